package engine

import "fmt"

// Transform places an instance in world space.
type Transform struct {
	Position Vec3
}

// Collider gives an instance a spherical collision volume.
type Collider struct {
	Radius float64
}

// Script attaches behaviour source to an instance.
type Script struct {
	Source string
}

// ComponentFunc constructs a component value from catalog parameters.
type ComponentFunc func(params map[string]any) (any, error)

func builtinComponents() map[string]ComponentFunc {
	return map[string]ComponentFunc{
		"transform": func(params map[string]any) (any, error) {
			return &Transform{Position: Vec3{
				X: floatParam(params, "x"),
				Y: floatParam(params, "y"),
				Z: floatParam(params, "z"),
			}}, nil
		},
		"collider": func(params map[string]any) (any, error) {
			return &Collider{Radius: floatParam(params, "radius")}, nil
		},
		"script": func(params map[string]any) (any, error) {
			src, _ := params["source"].(string)
			return &Script{Source: src}, nil
		},
	}
}

// floatParam reads a numeric parameter, tolerating JSON's float64 decoding.
func floatParam(params map[string]any, name string) float64 {
	switch v := params[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// SimInstance is the Sim engine's spawned scene object.
type SimInstance struct {
	name       string
	parent     Instance
	position   Vec3
	order      []string
	components map[string]any
}

// Name returns the instance's scene name.
func (si *SimInstance) Name() string {
	return si.name
}

// Component returns the attached component with the given type name.
func (si *SimInstance) Component(name string) (any, bool) {
	c, ok := si.components[name]
	return c, ok
}

// Components lists attached component type names in declaration order.
func (si *SimInstance) Components() []string {
	return si.order
}

// Parent returns the instance this one was parented under, if any.
func (si *SimInstance) Parent() Instance {
	return si.parent
}

// Position returns the instance's spawn position.
func (si *SimInstance) Position() Vec3 {
	return si.position
}

func (si *SimInstance) String() string {
	return fmt.Sprintf("instance(%s)", si.name)
}
