package hotkey

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/chordboard/internal/input/key"
)

// Op records a backend call.
type Op struct {
	Register bool
	ID       Identifier
}

// String returns "+id" for a register and "-id" for an unregister.
func (o Op) String() string {
	if o.Register {
		return "+" + o.ID.String()
	}
	return "-" + o.ID.String()
}

// MemoryBackend is a Backend that keeps registrations in memory. It is used
// on hosts without global hotkey support and in headless runs. Identifiers
// marked with Reserve behave as if another application owned them.
type MemoryBackend struct {
	mu       sync.Mutex
	live     map[Identifier]uuid.UUID
	reserved map[Identifier]bool
	ops      []Op
	events   chan Fire
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		live:     make(map[Identifier]uuid.UUID),
		reserved: make(map[Identifier]bool),
		events:   make(chan Fire, 16),
	}
}

// Register implements Backend.
func (m *MemoryBackend) Register(id Identifier, chord key.Chord, token uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.reserved[id] {
		return fmt.Errorf("%s is registered by another application", chord)
	}
	if _, ok := m.live[id]; ok {
		return fmt.Errorf("%s is already registered", chord)
	}
	m.live[id] = token
	m.ops = append(m.ops, Op{Register: true, ID: id})
	return nil
}

// Unregister implements Backend.
func (m *MemoryBackend) Unregister(id Identifier) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.live[id]; !ok {
		return nil
	}
	delete(m.live, id)
	m.ops = append(m.ops, Op{ID: id})
	return nil
}

// Reserve marks a chord as owned by another application.
func (m *MemoryBackend) Reserve(c key.Chord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reserved[IdentifierFor(c)] = true
}

// Release clears a reservation made with Reserve.
func (m *MemoryBackend) Release(c key.Chord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.reserved, IdentifierFor(c))
}

// Press simulates the user pressing a chord anywhere on the system.
// It reports false if the chord is not registered.
func (m *MemoryBackend) Press(c key.Chord) bool {
	id := IdentifierFor(c)
	m.mu.Lock()
	token, ok := m.live[id]
	m.mu.Unlock()
	if !ok {
		return false
	}
	m.events <- Fire{ID: id, Token: token}
	return true
}

// Events returns the channel presses are delivered on.
func (m *MemoryBackend) Events() <-chan Fire {
	return m.events
}

// IsRegistered returns true if the identifier is live.
func (m *MemoryBackend) IsRegistered(id Identifier) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.live[id]
	return ok
}

// Live returns the number of live registrations.
func (m *MemoryBackend) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// Ops returns the recorded calls in order.
func (m *MemoryBackend) Ops() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Op, len(m.ops))
	copy(out, m.ops)
	return out
}

// ResetOps clears the call log.
func (m *MemoryBackend) ResetOps() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = nil
}

// Close implements io.Closer.
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.live = make(map[Identifier]uuid.UUID)
	return nil
}
