package track

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry tracks live handles with free-list storage and observer support.
type Registry struct {
	entries   []slot
	freeList  []Token
	observers []Observer
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
}

type slot struct {
	entry Entry
	valid bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries:  make([]slot, 0, 64),
		freeList: make([]Token, 0, 16),
	}
}

// Add registers a handle and returns its token. Returns 0 if the registry
// is closed.
func (r *Registry) Add(key string, kind Kind) Token {
	entry := Entry{
		Key:       key,
		ID:        uuid.NewString(),
		Kind:      kind,
		CreatedAt: time.Now(),
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return 0
	}

	s := slot{entry: entry, valid: true}
	var tok Token
	if len(r.freeList) > 0 {
		tok = r.freeList[len(r.freeList)-1]
		r.freeList = r.freeList[:len(r.freeList)-1]
		r.entries[tok-1] = s
	} else {
		r.entries = append(r.entries, s)
		tok = Token(len(r.entries))
	}
	r.mu.Unlock()

	r.notify(Event{Type: EventCreated, Token: tok, Entry: entry})
	return tok
}

// Get retrieves the entry for a token.
func (r *Registry) Get(tok Token) (Entry, bool) {
	if tok == 0 {
		return Entry{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := tok - 1
	if int(idx) >= len(r.entries) || !r.entries[idx].valid {
		return Entry{}, false
	}
	return r.entries[idx].entry, true
}

// Release removes a handle that was explicitly released. Returns false if
// the token is invalid or already removed.
func (r *Registry) Release(tok Token) bool {
	return r.remove(tok, EventReleased)
}

// Leak removes a handle that was collected without release and reports it
// to observers. Returns false if the token is invalid or already removed.
func (r *Registry) Leak(tok Token) bool {
	return r.remove(tok, EventLeaked)
}

func (r *Registry) remove(tok Token, event EventType) bool {
	if tok == 0 {
		return false
	}

	r.mu.Lock()
	idx := tok - 1
	if int(idx) >= len(r.entries) || !r.entries[idx].valid {
		r.mu.Unlock()
		return false
	}
	entry := r.entries[idx].entry
	r.entries[idx] = slot{}
	r.freeList = append(r.freeList, tok)
	r.mu.Unlock()

	r.notify(Event{Type: event, Token: tok, Entry: entry})
	return true
}

// Subscribe adds an observer for lifecycle events.
func (r *Registry) Subscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	r.observers = append(r.observers, o)
}

// Unsubscribe removes an observer.
func (r *Registry) Unsubscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	for i, obs := range r.observers {
		if obs == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, s := range r.entries {
		if s.valid {
			count++
		}
	}
	return count
}

// Each iterates over all live handles.
func (r *Registry) Each(fn func(Token, Entry) bool) {
	r.mu.RLock()
	snapshot := make([]Event, 0, len(r.entries))
	for i, s := range r.entries {
		if s.valid {
			snapshot = append(snapshot, Event{Token: Token(i + 1), Entry: s.entry})
		}
	}
	r.mu.RUnlock()

	for _, e := range snapshot {
		if !fn(e.Token, e.Entry) {
			break
		}
	}
}

// Clear releases all live handles.
func (r *Registry) Clear() {
	var tokens []Token
	r.Each(func(tok Token, _ Entry) bool {
		tokens = append(tokens, tok)
		return true
	})
	for _, tok := range tokens {
		r.Release(tok)
	}
}

// Close releases all handles and stops accepting registrations. Idempotent.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	r.Clear()
	return nil
}

func (r *Registry) notify(e Event) {
	r.obsMu.RLock()
	defer r.obsMu.RUnlock()
	for _, o := range r.observers {
		o.OnHandleEvent(e)
	}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry that handles register in.
func Default() *Registry {
	return defaultRegistry
}
