package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"assistente/internal/core"
	"assistente/internal/ledger"
)

// Store is an in-process ledger. It is used by the memory backend and tests;
// nothing survives a restart.
type Store struct {
	mu       sync.RWMutex
	items    []core.Entry
	mirrored map[int64]time.Time
	nextID   int64
}

func New() *Store {
	return &Store{mirrored: map[int64]time.Time{}}
}

// Insert stores the entry and assigns the next id.
func (s *Store) Insert(_ context.Context, e core.Entry) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	e.ID = s.nextID
	if e.Source == "" {
		e.Source = core.DefaultSource
	}
	s.items = append(s.items, e)
	return e.ID, nil
}

// ReadSnapshot implements ledger.Snapshotter by handing fn a copy of the
// entries taken under the read lock.
func (s *Store) ReadSnapshot(_ context.Context, fn func(ledger.Reader) error) error {
	s.mu.RLock()
	view := &Store{
		items:    append([]core.Entry(nil), s.items...),
		mirrored: map[int64]time.Time{},
		nextID:   s.nextID,
	}
	s.mu.RUnlock()
	return fn(view)
}

func (s *Store) SumAndCount(_ context.Context, userID string, kind core.Kind, w core.Window) (core.KindTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out core.KindTotals
	for _, e := range s.items {
		if e.UserID != userID || e.Kind != kind || !w.Contains(e.EffectiveDate) {
			continue
		}
		out.Sum = out.Sum.Add(e.Amount)
		out.Count++
	}
	return out, nil
}

func (s *Store) TopCategories(_ context.Context, userID string, w core.Window, limit int) ([]core.CategoryTotal, error) {
	s.mu.RLock()
	byCat := map[core.Category]*core.CategoryTotal{}
	for _, e := range s.items {
		if e.UserID != userID || e.Kind != core.KindExpense || !w.Contains(e.EffectiveDate) {
			continue
		}
		ct, ok := byCat[e.Category]
		if !ok {
			ct = &core.CategoryTotal{Category: e.Category}
			byCat[e.Category] = ct
		}
		ct.Sum = ct.Sum.Add(e.Amount)
		ct.Count++
	}
	s.mu.RUnlock()

	out := make([]core.CategoryTotal, 0, len(byCat))
	for _, ct := range byCat {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Sum.Cmp(out[j].Sum.Decimal); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) Recent(_ context.Context, userID string, w core.Window, limit int) ([]core.Entry, error) {
	s.mu.RLock()
	var out []core.Entry
	for _, e := range s.items {
		if e.UserID == userID && w.Contains(e.EffectiveDate) {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].RecordedAt.Equal(out[j].RecordedAt) {
			return out[i].RecordedAt.After(out[j].RecordedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) Stats(_ context.Context) (core.LedgerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := map[string]struct{}{}
	for _, e := range s.items {
		users[e.UserID] = struct{}{}
	}
	return core.LedgerStats{Entries: int64(len(s.items)), Users: int64(len(users))}, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Get(_ context.Context, id int64) (core.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.items {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Entry{}, ledger.ErrNotFound
}

func (s *Store) Mirrored(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, done := s.mirrored[id]; done {
		return true, nil
	}
	for _, e := range s.items {
		if e.ID == id {
			return false, nil
		}
	}
	return false, ledger.ErrNotFound
}

// PendingMirror returns entries not yet marked mirrored, oldest first.
func (s *Store) PendingMirror(_ context.Context, limit int) ([]core.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Entry
	for _, e := range s.items {
		if _, done := s.mirrored[e.ID]; done {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkMirrored(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.items {
		if e.ID == id {
			s.mirrored[id] = at
			return nil
		}
	}
	return ledger.ErrNotFound
}

var (
	_ ledger.Store  = (*Store)(nil)
	_ ledger.Mirror = (*Store)(nil)
)
