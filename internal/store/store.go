package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// ErrVersionConflict indicates the persisted state moved past the version
// this process last saw.
var ErrVersionConflict = errors.New("store: state version conflict")

// Persister loads and saves the aggregate.
type Persister interface {
	// Load returns the stored state, or nil when nothing was saved yet.
	Load(ctx context.Context) (*State, error)
	// Save writes st if the stored version still equals prev.
	Save(ctx context.Context, st *State, prev int64) error
}

// CommitHook runs after a mutation is committed.
type CommitHook func(ctx context.Context, version int64)

// Store owns the current state and serialises writers.
type Store struct {
	mu        sync.Mutex
	state     *State
	persister Persister
	logger    *slog.Logger
	newID     func() string

	hookMu sync.RWMutex
	hooks  []CommitHook
}

// Option configures a Store.
type Option func(*Store)

// WithPersister stores every commit through p.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithLogger attaches a logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithIDGenerator overrides how record ids are stamped.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithState starts the store from st instead of an empty chart.
func WithState(st *State) Option {
	return func(s *Store) {
		if st != nil {
			st.normalize()
			s.state = st
		}
	}
}

// New returns a store holding an empty state seeded with the default chart.
func New(opts ...Option) *Store {
	s := &Store{state: NewState(), logger: slog.Default(), newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads the persisted state. When nothing is stored yet the current
// state, seeded or empty, is written as the first version.
func (s *Store) Open(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	st, err := s.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("store: load: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if st != nil {
		st.normalize()
		s.state = st
		s.logger.Info("state loaded", slog.Int64("version", st.Version), slog.Int("entries", len(st.JournalEntries)))
		return nil
	}
	first := s.state.Clone()
	first.Version = 1
	if err := s.persister.Save(ctx, first, 0); err != nil {
		return fmt.Errorf("store: initial save: %w", err)
	}
	s.state = first
	s.logger.Info("state initialised", slog.Int64("version", first.Version))
	return nil
}

// Snapshot returns the current state. It must not be modified.
func (s *Store) Snapshot() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Version returns the version of the current state.
func (s *Store) Version() int64 {
	return s.Snapshot().Version
}

// OnCommit registers a hook called after every committed mutation.
func (s *Store) OnCommit(h CommitHook) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.hooks = append(s.hooks, h)
}

// Reload replaces the in-memory state when the persisted one is newer.
// It reports whether the state changed.
func (s *Store) Reload(ctx context.Context) (bool, error) {
	if s.persister == nil {
		return false, nil
	}
	st, err := s.persister.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("store: reload: %w", err)
	}
	if st == nil {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.Version <= s.state.Version {
		return false, nil
	}
	st.normalize()
	s.state = st
	return true, nil
}

// update runs fn against a private copy of the state. The copy replaces the
// current state only when fn succeeds and changed something.
func (s *Store) update(ctx context.Context, fn func(*stateTx) error) error {
	s.mu.Lock()
	current := s.state
	tx := &stateTx{st: current.Clone(), newID: s.newID}
	if err := fn(tx); err != nil {
		s.mu.Unlock()
		return err
	}
	if !tx.dirty {
		s.mu.Unlock()
		return nil
	}
	tx.st.Version = current.Version + 1
	if s.persister != nil {
		if err := s.persister.Save(ctx, tx.st, current.Version); err != nil {
			s.mu.Unlock()
			if errors.Is(err, ErrVersionConflict) {
				s.logger.Warn("stale state, reloading", slog.Int64("version", current.Version))
				if _, rerr := s.Reload(ctx); rerr != nil {
					s.logger.Error("reload after conflict failed", slog.Any("error", rerr))
				}
			}
			return fmt.Errorf("store: save: %w", err)
		}
	}
	s.state = tx.st
	version := tx.st.Version
	s.mu.Unlock()

	s.hookMu.RLock()
	hooks := append([]CommitHook(nil), s.hooks...)
	s.hookMu.RUnlock()
	for _, h := range hooks {
		h(ctx, version)
	}
	return nil
}
