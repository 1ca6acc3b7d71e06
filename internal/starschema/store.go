package starschema

import (
	"sync"
	"sync/atomic"
	"time"
)

// Meta records where a snapshot came from.
type Meta struct {
	BatchID     string    `json:"batch_id"`
	Source      string    `json:"source"`
	Checksum    string    `json:"checksum"`
	LoadedAt    time.Time `json:"loaded_at"`
	RowsRead    int       `json:"rows_read"`
	RowsValid   int       `json:"rows_valid"`
	RowsSkipped int       `json:"rows_skipped"`
}

// Snapshot is one complete, immutable ingestion result. Once handed to
// Store.Swap it must not be modified.
type Snapshot struct {
	Budget   []BudgetFact
	Realized []RealizedFact
	Dimensions
	Meta Meta
}

// Counts reports the size of every collection, keyed by table name.
func (s *Snapshot) Counts() map[string]int {
	return map[string]int{
		"fato_orcamento": len(s.Budget),
		"fato_realizado": len(s.Realized),
		"d_calendario":   len(s.Calendar),
		"d_estrutura":    len(s.Structure),
		"d_conta":        len(s.Accounts),
		"d_fornecedor":   len(s.Suppliers),
	}
}

// Loaded reports whether the snapshot came from a successful ingestion.
func (s *Snapshot) Loaded() bool {
	return s.Meta.BatchID != ""
}

var emptySnapshot = &Snapshot{}

// Store holds the current snapshot. Replacement is a single pointer swap, so
// a reader sees either the previous dataset or the new one, never a mix.
type Store struct {
	current atomic.Pointer[Snapshot]

	mu        sync.Mutex
	nextID    uint64
	listeners []listener
}

type listener struct {
	id uint64
	fn func(*Snapshot)
}

func NewStore() *Store {
	return &Store{}
}

// Current returns the last successfully stored snapshot, or an empty one
// before the first ingestion.
func (s *Store) Current() *Snapshot {
	if snap := s.current.Load(); snap != nil {
		return snap
	}
	return emptySnapshot
}

// Swap installs snap as the current dataset and returns the one it replaced.
// Listeners run after the swap, in registration order.
func (s *Store) Swap(snap *Snapshot) *Snapshot {
	prev := s.current.Swap(snap)

	s.mu.Lock()
	listeners := append([]listener{}, s.listeners...)
	s.mu.Unlock()
	for _, l := range listeners {
		l.fn(snap)
	}

	if prev == nil {
		return emptySnapshot
	}
	return prev
}

// OnSwap registers fn to be called with every newly installed snapshot. The
// returned func unregisters it and is safe to call more than once.
func (s *Store) OnSwap(fn func(*Snapshot)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// ListenerCount reports how many swap listeners are registered.
func (s *Store) ListenerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}
