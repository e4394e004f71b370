package engine

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrClosed is reported for operations on a closed engine.
	ErrClosed = errors.New("engine: closed")

	// ErrUnknownKey is the load failure for keys absent from the catalog.
	ErrUnknownKey = errors.New("engine: unknown asset key")

	// ErrUnknownInstance is returned when destroying an instance the
	// engine does not own.
	ErrUnknownInstance = errors.New("engine: unknown instance")

	// ErrNotPrefab is returned when instantiating a non-prefab asset.
	ErrNotPrefab = errors.New("engine: asset is not a prefab")
)

// DefaultSimVersion is new enough for the background instantiation path.
const DefaultSimVersion = "2.3.0"

// Sim is an in-memory reference engine with a cooperative frame pump.
// Loads complete a configurable number of frames after they are requested;
// asset content is materialized once per key and shared by every operation,
// with per-key reference counts deciding eviction. Sim stands in for a real
// host engine in tests, examples, and the loadsim CLI.
type Sim struct {
	mu         sync.Mutex
	sf         singleflight.Group
	entries    map[string]CatalogAsset
	content    map[string]any
	refs       map[string]int
	refOps     map[*Operation]struct{}
	components map[string]ComponentFunc
	pending    []*simPending
	nextFrame  []func()
	instances  map[*SimInstance]struct{}
	frame      int64
	spawned    int64
	version    string
	latency    int
	closed     bool
}

type simPending struct {
	op          *Operation
	due         int64
	instantiate bool
	asset       any
	opts        InstantiateOptions
}

// SimOption configures a Sim engine.
type SimOption func(*Sim)

// WithVersion sets the version string the engine reports.
func WithVersion(v string) SimOption {
	return func(s *Sim) { s.version = v }
}

// WithLatency sets how many frames a load stays in flight. Minimum 1.
func WithLatency(frames int) SimOption {
	return func(s *Sim) {
		if frames < 1 {
			frames = 1
		}
		s.latency = frames
	}
}

// NewSim creates an empty Sim engine.
func NewSim(opts ...SimOption) *Sim {
	s := &Sim{
		entries:    make(map[string]CatalogAsset),
		content:    make(map[string]any),
		refs:       make(map[string]int),
		refOps:     make(map[*Operation]struct{}),
		components: builtinComponents(),
		instances:  make(map[*SimInstance]struct{}),
		version:    DefaultSimVersion,
		latency:    1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddCatalog merges a parsed catalog into the engine.
func (s *Sim) AddCatalog(c *Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range c.Assets {
		s.entries[a.Key] = a
	}
}

// AddText registers a text asset.
func (s *Sim) AddText(key, body string) {
	s.addEntry(CatalogAsset{Key: key, Type: AssetText, Body: body})
}

// AddBlob registers a binary asset.
func (s *Sim) AddBlob(key string, data []byte) {
	s.addEntry(CatalogAsset{
		Key:  key,
		Type: AssetBlob,
		Data: base64.StdEncoding.EncodeToString(data),
	})
}

// AddPrefab registers a prefab asset with the given component specs.
func (s *Sim) AddPrefab(key string, specs ...ComponentSpec) {
	s.addEntry(CatalogAsset{Key: key, Type: AssetPrefab, Components: specs})
}

// AddBroken registers a key whose loads always fail with reason.
func (s *Sim) AddBroken(key, reason string) {
	s.addEntry(CatalogAsset{Key: key, Type: AssetBroken, Reason: reason})
}

func (s *Sim) addEntry(a CatalogAsset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[a.Key] = a
}

// RegisterComponent adds a component constructor for prefab specs.
func (s *Sim) RegisterComponent(name string, fn ComponentFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.components[name] = fn
}

// BeginLoad implements Engine.
func (s *Sim) BeginLoad(key string) (*Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	op := NewOperation(key)
	s.pending = append(s.pending, &simPending{
		op:  op,
		due: s.frame + int64(s.latency),
	})
	return op, nil
}

// Release implements Engine. Releasing a succeeded operation drops its
// reference; when a key's count reaches zero its content is evicted.
// Releasing a pending operation abandons it before completion.
func (s *Sim) Release(op *Operation) {
	if op == nil {
		return
	}
	if !op.MarkReleased() {
		return
	}

	s.dropRef(op)
}

// dropRef returns the content reference held by op, if it holds one.
func (s *Sim) dropRef(op *Operation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.refOps[op]; !ok {
		return
	}
	delete(s.refOps, op)
	key := op.Key()
	if s.refs[key] > 0 {
		s.refs[key]--
		if s.refs[key] == 0 {
			delete(s.refs, key)
			delete(s.content, key)
		}
	}
}

// Instantiate implements Engine.
func (s *Sim) Instantiate(asset any, opts InstantiateOptions) (Instance, error) {
	prefab, ok := asset.(*Prefab)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotPrefab, asset)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.spawned++
	n := s.spawned
	constructors := s.components
	s.mu.Unlock()

	inst := &SimInstance{
		name:       fmt.Sprintf("%s#%d", prefab.Key, n),
		parent:     opts.Parent,
		position:   opts.Position,
		components: make(map[string]any, len(prefab.Specs)),
	}
	for _, spec := range prefab.Specs {
		fn, ok := constructors[spec.Type]
		if !ok {
			return nil, fmt.Errorf("engine: unknown component type %q", spec.Type)
		}
		c, err := fn(spec.Params)
		if err != nil {
			return nil, fmt.Errorf("engine: build component %q: %w", spec.Type, err)
		}
		inst.components[spec.Type] = c
		inst.order = append(inst.order, spec.Type)
	}

	s.mu.Lock()
	s.instances[inst] = struct{}{}
	s.mu.Unlock()

	Logger().Debug("instantiated prefab",
		zap.String("key", prefab.Key),
		zap.String("instance", inst.name))
	return inst, nil
}

// InstantiateAsync implements AsyncInstantiator. The spawn happens on the
// next frame step and the operation's result is the Instance.
func (s *Sim) InstantiateAsync(asset any, opts InstantiateOptions) (*Operation, error) {
	prefab, ok := asset.(*Prefab)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotPrefab, asset)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	op := NewOperation(prefab.Key)
	s.pending = append(s.pending, &simPending{
		op:          op,
		due:         s.frame + 1,
		instantiate: true,
		asset:       asset,
		opts:        opts,
	})
	return op, nil
}

// Destroy implements Engine.
func (s *Sim) Destroy(inst Instance) error {
	si, ok := inst.(*SimInstance)
	if !ok {
		return ErrUnknownInstance
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.instances[si]; !ok {
		return ErrUnknownInstance
	}
	delete(s.instances, si)
	return nil
}

// OnNextFrame implements Engine.
func (s *Sim) OnNextFrame(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextFrame = append(s.nextFrame, fn)
}

// Version implements Engine.
func (s *Sim) Version() string {
	return s.version
}

// Step advances the engine by one frame: next-frame callbacks run first,
// then every due operation completes.
func (s *Sim) Step() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.frame++
	frame := s.frame
	callbacks := s.nextFrame
	s.nextFrame = nil

	var due, rest []*simPending
	for _, p := range s.pending {
		if p.due <= frame {
			due = append(due, p)
		} else {
			rest = append(rest, p)
		}
	}
	s.pending = rest
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
	for _, p := range due {
		s.complete(p)
	}
}

func (s *Sim) complete(p *simPending) {
	if p.op.Released() {
		return
	}

	if p.instantiate {
		inst, err := s.Instantiate(p.asset, p.opts)
		if err != nil {
			p.op.Complete(nil, err)
			return
		}
		if !p.op.Complete(inst, nil) {
			// Released between the check above and completion; the
			// instance must not outlive its abandoned operation.
			_ = s.Destroy(inst)
		}
		return
	}

	value, err := s.contentFor(p.op.Key())
	if err != nil {
		p.op.Complete(nil, err)
		return
	}
	// Take the reference before completing so a concurrent Release
	// observes it; undo if the completion was discarded.
	s.mu.Lock()
	s.refs[p.op.Key()]++
	s.refOps[p.op] = struct{}{}
	s.mu.Unlock()
	if !p.op.Complete(value, nil) {
		s.dropRef(p.op)
	}
}

// contentFor materializes asset content, once per key no matter how many
// operations are in flight for it.
func (s *Sim) contentFor(key string) (any, error) {
	s.mu.Lock()
	if v, ok := s.content[key]; ok {
		s.mu.Unlock()
		return v, nil
	}
	entry, ok := s.entries[key]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	v, err, _ := s.sf.Do(key, func() (any, error) {
		value, err := entry.build()
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.content[key] = value
		s.mu.Unlock()
		return value, nil
	})
	return v, err
}

// StepN advances the engine by n frames.
func (s *Sim) StepN(n int) {
	for i := 0; i < n; i++ {
		s.Step()
	}
}

// Pump steps the engine at the given interval until ctx is done.
func (s *Sim) Pump(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Step()
		}
	}
}

// Frame returns the current frame number.
func (s *Sim) Frame() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Refs returns the reference count for a key's content.
func (s *Sim) Refs(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs[key]
}

// LiveInstances returns the number of spawned instances not yet destroyed.
func (s *Sim) LiveInstances() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.instances)
}

// Loaded reports whether a key's content is currently materialized.
func (s *Sim) Loaded(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.content[key]
	return ok
}

// Close fails every pending operation with ErrClosed and drops all state.
// Idempotent.
func (s *Sim) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	pending := s.pending
	s.pending = nil
	s.nextFrame = nil
	s.instances = make(map[*SimInstance]struct{})
	s.content = make(map[string]any)
	s.refs = make(map[string]int)
	s.refOps = make(map[*Operation]struct{})
	s.mu.Unlock()

	for _, p := range pending {
		p.op.Complete(nil, ErrClosed)
	}
	return nil
}
