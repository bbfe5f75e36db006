package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// StoreConfig bounds the memory held by the in-memory draft table.
type StoreConfig struct {
	// Retention is how long a non-terminal draft may stay untouched before
	// it is evicted. Evicting an OPEN or SIMULATED draft discards caller
	// work; it is a normal, documented outcome, not a bug.
	Retention time.Duration `mapstructure:"retention"`

	// TerminalGrace is how long terminal drafts (BROADCAST, FAILED) remain
	// queryable before eviction, so the ledger tx id and failure detail can
	// still be inspected for a while.
	TerminalGrace time.Duration `mapstructure:"terminal_grace"`

	// SweepInterval is how often the janitor scans for evictable drafts.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// DefaultStoreConfig provides retention values suitable for interactive use.
var DefaultStoreConfig = StoreConfig{
	Retention:     30 * time.Minute,
	TerminalGrace: 5 * time.Minute,
	SweepInterval: time.Minute,
}

// Store is the in-memory table of transaction drafts, keyed by draft id.
// It is the engine's only shared mutable structure. The table mutex is held
// only for map lookups; every draft carries its own mutex, so operations on
// the same draft serialize while operations on different drafts proceed
// independently, even across blocking node calls.
type Store struct {
	mu      sync.Mutex
	entries map[string]*draftEntry
	cfg     StoreConfig
	now     func() time.Time
}

type draftEntry struct {
	mu    sync.Mutex
	draft *Draft
	// evicted marks entries removed from the table while another goroutine
	// still holds their mutex.
	evicted bool
}

// NewStore creates an empty draft store with the given retention settings.
// Zero durations fall back to the defaults.
func NewStore(cfg StoreConfig) *Store {
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultStoreConfig.Retention
	}
	if cfg.TerminalGrace <= 0 {
		cfg.TerminalGrace = DefaultStoreConfig.TerminalGrace
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultStoreConfig.SweepInterval
	}
	return &Store{
		entries: make(map[string]*draftEntry),
		cfg:     cfg,
		now:     time.Now,
	}
}

// Open inserts a fresh OPEN draft under the given id. Duplicate ids are
// rejected rather than overwritten.
func (s *Store) Open(id string) (*Draft, error) {
	now := s.now()
	draft := &Draft{
		ID:             id,
		Status:         StatusOpen,
		Inputs:         []InputRef{},
		Outputs:        []OutputSpec{},
		Fee:            decimal.Zero,
		CreatedAt:      now,
		LastModifiedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; ok {
		return nil, NewDuplicateDraftError(id)
	}
	s.entries[id] = &draftEntry{draft: draft}
	return draft.clone(), nil
}

// Insert adds a reconstructed draft (from import) under its id, subject to
// the same uniqueness rule as Open.
func (s *Store) Insert(draft *Draft) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[draft.ID]; ok {
		return nil, NewDuplicateDraftError(draft.ID)
	}
	s.entries[draft.ID] = &draftEntry{draft: draft}
	return draft.clone(), nil
}

// Update runs fn against the draft with the given id while holding that
// draft's mutex. fn receives the live draft and may mutate it; the returned
// snapshot is a deep copy taken after fn completes. If fn returns an error
// the draft keeps whatever state fn left it in, so fn must only mutate after
// the point of no return.
func (s *Store) Update(id string, fn func(*Draft) error) (*Draft, error) {
	entry, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.evicted {
		return nil, NewDraftNotFoundError(id)
	}

	if err := fn(entry.draft); err != nil {
		return nil, err
	}
	entry.draft.LastModifiedAt = s.now()
	return entry.draft.clone(), nil
}

// Get returns a snapshot of the draft with the given id.
func (s *Store) Get(id string) (*Draft, error) {
	entry, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.evicted {
		return nil, NewDraftNotFoundError(id)
	}
	return entry.draft.clone(), nil
}

// Delete transitions a non-terminal draft to DELETED and removes it from the
// table. Deleting a terminal draft is an invalid-state error.
func (s *Store) Delete(id string) (*Draft, error) {
	entry, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.evicted {
		return nil, NewDraftNotFoundError(id)
	}
	if entry.draft.Status.Terminal() {
		return nil, NewInvalidStateError("delete", entry.draft.Status)
	}

	entry.draft.Status = StatusDeleted
	entry.draft.LastModifiedAt = s.now()
	snapshot := entry.draft.clone()
	s.remove(id, entry)
	return snapshot, nil
}

// List returns snapshots of all drafts currently held, ordered by creation
// time and then id for a stable listing.
func (s *Store) List() []*Draft {
	s.mu.Lock()
	entries := make([]*draftEntry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.Unlock()

	drafts := make([]*Draft, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.evicted {
			drafts = append(drafts, e.draft.clone())
		}
		e.mu.Unlock()
	}
	sort.Slice(drafts, func(i, j int) bool {
		if !drafts[i].CreatedAt.Equal(drafts[j].CreatedAt) {
			return drafts[i].CreatedAt.Before(drafts[j].CreatedAt)
		}
		return drafts[i].ID < drafts[j].ID
	})
	return drafts
}

// Sweep evicts drafts idle past the retention window and terminal drafts
// past the grace period. It returns the ids it removed.
func (s *Store) Sweep() []string {
	s.mu.Lock()
	candidates := make(map[string]*draftEntry, len(s.entries))
	for id, e := range s.entries {
		candidates[id] = e
	}
	s.mu.Unlock()

	now := s.now()
	var evicted []string
	for id, e := range candidates {
		e.mu.Lock()
		if !e.evicted && s.expired(e.draft, now) {
			s.remove(id, e)
			evicted = append(evicted, id)
		}
		e.mu.Unlock()
	}
	sort.Strings(evicted)
	return evicted
}

// StartJanitor runs periodic sweeps until ctx is cancelled.
func (s *Store) StartJanitor(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

func (s *Store) expired(d *Draft, now time.Time) bool {
	if d.Status.Terminal() {
		return now.Sub(d.LastModifiedAt) > s.cfg.TerminalGrace
	}
	return now.Sub(d.LastModifiedAt) > s.cfg.Retention
}

func (s *Store) lookup(id string) (*draftEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, NewDraftNotFoundError(id)
	}
	return entry, nil
}

// remove expects the caller to hold the entry mutex.
func (s *Store) remove(id string, entry *draftEntry) {
	entry.evicted = true
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}
