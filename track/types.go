package track

import "time"

// Token is an opaque reference to a registered handle.
// Token 0 is reserved and always invalid.
type Token uint32

// Kind identifies what a registered handle owns.
type Kind uint8

const (
	KindLoad  Kind = iota // asset load reference
	KindSpawn             // load reference plus a spawned instance
)

func (k Kind) String() string {
	switch k {
	case KindLoad:
		return "load"
	case KindSpawn:
		return "spawn"
	}
	return "unknown"
}

// Entry describes one live handle.
type Entry struct {
	Key       string
	ID        string // trace id, stable across the handle's lifetime
	Kind      Kind
	CreatedAt time.Time
}

// Event types for handle lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventReleased
	EventLeaked
)

// Event represents a handle lifecycle event.
type Event struct {
	Entry Entry
	Token Token
	Type  EventType
}

// Observer receives notifications about handle lifecycle events.
type Observer interface {
	OnHandleEvent(Event)
}
