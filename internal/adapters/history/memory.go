package history

import (
	"context"
	"sync"

	"github.com/okian/shuttlerank/internal/domain/model"
	"github.com/okian/shuttlerank/pkg/logger"
	"github.com/okian/shuttlerank/pkg/metrics"
)

type snapKey struct {
	player model.PlayerID
	match  string
}

// MemoryStore keeps history in process memory. Batches stage writes and
// publish them on success.
type MemoryStore struct {
	mu       sync.RWMutex
	byKey    map[snapKey]model.RatingSnapshot
	byPlayer map[model.PlayerID][]model.RatingSnapshot
	matches  map[string]struct{}

	resolver Resolver
	logger   logger.Logger
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := defaults(opts)
	return &MemoryStore{
		byKey:    make(map[snapKey]model.RatingSnapshot),
		byPlayer: make(map[model.PlayerID][]model.RatingSnapshot),
		matches:  make(map[string]struct{}),
		resolver: s.resolver,
		logger:   s.logger,
	}
}

// Record implements Writer as a single-write batch.
func (s *MemoryStore) Record(ctx context.Context, snap model.RatingSnapshot) (model.RatingSnapshot, error) {
	var out model.RatingSnapshot
	err := s.Batch(ctx, func(w Writer) error {
		var err error
		out, err = w.Record(ctx, snap)
		return err
	})
	return out, err
}

// Latest implements Writer.
func (s *MemoryStore) Latest(_ context.Context, id model.PlayerID) (model.RatingSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := latestOf(s.byPlayer[id])
	return snap, ok, nil
}

// HasMatch implements Writer.
func (s *MemoryStore) HasMatch(_ context.Context, matchID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.matches[matchID]
	return ok, nil
}

// History implements Store.
func (s *MemoryStore) History(_ context.Context, id model.PlayerID) ([]model.RatingSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snaps := s.byPlayer[id]
	if len(snaps) == 0 {
		return nil, ErrNotFound
	}
	out := make([]model.RatingSnapshot, len(snaps))
	copy(out, snaps)
	sortChronological(out)
	return out, nil
}

// HistoryByPerson implements Store.
func (s *MemoryStore) HistoryByPerson(_ context.Context, person model.PersonID) ([]model.RatingSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.RatingSnapshot
	for _, id := range s.resolver.Players(person) {
		out = append(out, s.byPlayer[id]...)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	sortChronological(out)
	return out, nil
}

// Batch implements Store. Concurrent batches are serialized.
func (s *MemoryStore) Batch(ctx context.Context, fn func(w Writer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{
		base:    s,
		staged:  make(map[snapKey]model.RatingSnapshot),
		matches: make(map[string]struct{}),
	}
	if err := fn(tx); err != nil {
		s.logger.Warn(ctx, "history batch discarded",
			logger.Int("staged", len(tx.order)),
			logger.Error(err),
		)
		return err
	}

	for _, snap := range tx.order {
		s.byKey[snapKey{snap.PlayerID, snap.MatchID}] = snap
		s.byPlayer[snap.PlayerID] = append(s.byPlayer[snap.PlayerID], snap)
		s.matches[snap.MatchID] = struct{}{}
		metrics.RecordSnapshotWritten()
	}
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

// memoryTx reads through to the base maps; the caller holds base.mu.
type memoryTx struct {
	base    *MemoryStore
	staged  map[snapKey]model.RatingSnapshot
	order   []model.RatingSnapshot
	matches map[string]struct{}
}

func (t *memoryTx) Record(_ context.Context, snap model.RatingSnapshot) (model.RatingSnapshot, error) {
	if err := validate(&snap); err != nil {
		return model.RatingSnapshot{}, err
	}
	key := snapKey{snap.PlayerID, snap.MatchID}
	if old, ok := t.base.byKey[key]; ok {
		metrics.RecordSnapshotDuplicate()
		return old, nil
	}
	if old, ok := t.staged[key]; ok {
		metrics.RecordSnapshotDuplicate()
		return old, nil
	}
	t.staged[key] = snap
	t.order = append(t.order, snap)
	t.matches[snap.MatchID] = struct{}{}
	return snap, nil
}

func (t *memoryTx) Latest(_ context.Context, id model.PlayerID) (model.RatingSnapshot, bool, error) {
	var all []model.RatingSnapshot
	all = append(all, t.base.byPlayer[id]...)
	for _, snap := range t.order {
		if snap.PlayerID == id {
			all = append(all, snap)
		}
	}
	snap, ok := latestOf(all)
	return snap, ok, nil
}

func (t *memoryTx) HasMatch(_ context.Context, matchID string) (bool, error) {
	if _, ok := t.base.matches[matchID]; ok {
		return true, nil
	}
	_, ok := t.matches[matchID]
	return ok, nil
}

// latestOf returns the newest snapshot; equal keys resolve to the later write.
func latestOf(snaps []model.RatingSnapshot) (model.RatingSnapshot, bool) {
	if len(snaps) == 0 {
		return model.RatingSnapshot{}, false
	}
	best := snaps[0]
	for i := 1; i < len(snaps); i++ {
		if !snaps[i].Before(&best) {
			best = snaps[i]
		}
	}
	return best, true
}
