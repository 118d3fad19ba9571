package report

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"assistente/internal/core"
	"assistente/internal/ledger"
)

const (
	TopCategoriesLimit = 5
	RecentLimit        = 8
)

// Aggregator builds reports from a ledger reader.
type Aggregator struct {
	reader ledger.Reader
	clock  core.Clock
}

func NewAggregator(reader ledger.Reader, clock core.Clock) *Aggregator {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &Aggregator{reader: reader, clock: clock}
}

// Build resolves the window for phrase and runs the four ledger queries.
// Readers that implement ledger.Snapshotter answer all four from one
// consistent view; other readers are queried concurrently. Any failure aborts
// the report; the returned error matches ledger.ErrPersistence.
func (a *Aggregator) Build(ctx context.Context, userID, phrase string) (core.Report, error) {
	now := a.clock.Now()
	w := ResolveWindow(phrase, now)

	var (
		t   totals
		err error
	)
	if snap, ok := a.reader.(ledger.Snapshotter); ok {
		err = snap.ReadSnapshot(ctx, func(r ledger.Reader) error {
			var readErr error
			t, readErr = readSequential(ctx, r, userID, w)
			return readErr
		})
		err = ledger.Persistence("read snapshot", err)
	} else {
		t, err = readConcurrent(ctx, a.reader, userID, w)
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to build report", "user", userID, "window", w.Label, "error", err)
		return core.Report{}, err
	}

	slog.InfoContext(ctx, "Report built", "user", userID, "window", w.Label,
		"expenses", t.expense.Count, "income", t.income.Count)
	return core.Report{
		Window:      w,
		Income:      t.income,
		Expense:     t.expense,
		Balance:     t.income.Sum.Sub(t.expense.Sum),
		Categories:  t.categories,
		Recent:      t.recent,
		GeneratedAt: now,
	}, nil
}

type totals struct {
	income, expense core.KindTotals
	categories      []core.CategoryTotal
	recent          []core.Entry
}

// readSequential issues the queries one after another. A snapshot holds a
// single connection, so there is nothing to gain from running them in parallel.
func readSequential(ctx context.Context, r ledger.Reader, userID string, w core.Window) (totals, error) {
	var (
		t   totals
		err error
	)
	if t.expense, err = r.SumAndCount(ctx, userID, core.KindExpense, w); err != nil {
		return totals{}, ledger.Persistence("sum expenses", err)
	}
	if t.income, err = r.SumAndCount(ctx, userID, core.KindIncome, w); err != nil {
		return totals{}, ledger.Persistence("sum income", err)
	}
	if t.categories, err = r.TopCategories(ctx, userID, w, TopCategoriesLimit); err != nil {
		return totals{}, ledger.Persistence("top categories", err)
	}
	if t.recent, err = r.Recent(ctx, userID, w, RecentLimit); err != nil {
		return totals{}, ledger.Persistence("recent entries", err)
	}
	return t, nil
}

func readConcurrent(ctx context.Context, r ledger.Reader, userID string, w core.Window) (totals, error) {
	var t totals
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		t.expense, err = r.SumAndCount(gctx, userID, core.KindExpense, w)
		return ledger.Persistence("sum expenses", err)
	})
	g.Go(func() error {
		var err error
		t.income, err = r.SumAndCount(gctx, userID, core.KindIncome, w)
		return ledger.Persistence("sum income", err)
	})
	g.Go(func() error {
		var err error
		t.categories, err = r.TopCategories(gctx, userID, w, TopCategoriesLimit)
		return ledger.Persistence("top categories", err)
	})
	g.Go(func() error {
		var err error
		t.recent, err = r.Recent(gctx, userID, w, RecentLimit)
		return ledger.Persistence("recent entries", err)
	})
	if err := g.Wait(); err != nil {
		return totals{}, err
	}
	return t, nil
}
