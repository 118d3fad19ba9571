package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"assistente/internal/core"
	"assistente/internal/interpret"
	"assistente/internal/ledger"
	"assistente/internal/ledger/memory"
)

func TestResolveWindow(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		phrase string
		mode   core.WindowMode
		start  string
		label  string
	}{
		{"gastos de hoje", core.WindowDay, "2024-03-15", LabelToday},
		{"HOJE e ontem", core.WindowDay, "2024-03-15", LabelToday},
		{"relatório de ontem", core.WindowDay, "2024-03-14", LabelYesterday},
		{"relatório da semana", core.WindowSince, "2024-03-08", LabelWeek},
		{"gastos do mês", core.WindowMonth, "2024-03-01", LabelMonth},
		{"gastos do mes", core.WindowMonth, "2024-03-01", LabelMonth},
		{"saldo", core.WindowSince, "2024-02-14", LabelDefault},
	}
	for _, tt := range tests {
		w := ResolveWindow(tt.phrase, now)
		if w.Mode != tt.mode || w.Start.String() != tt.start || w.Label != tt.label {
			t.Errorf("ResolveWindow(%q) = %v %s %q, want %v %s %q", tt.phrase, w.Mode, w.Start, w.Label, tt.mode, tt.start, tt.label)
		}
	}
}

func TestMonthWindowExcludesPreviousMonth(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	w := ResolveWindow("mês", now)
	if w.Contains(core.NewDate(2024, 2, 28)) {
		t.Fatal("2024-02-28 must be outside the month window")
	}
	if !w.Contains(core.NewDate(2024, 3, 1)) || !w.Contains(core.NewDate(2024, 3, 31)) {
		t.Fatal("month window must cover all of March")
	}
}

func TestRoundTripToday(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)
	store := memory.New()

	res := interpret.Interpret("Gastei 50 reais no mercado")
	if !res.OK || res.Kind != core.KindExpense || res.Category != core.CategoryFood {
		t.Fatalf("unexpected interpretation: %+v", res)
	}
	if _, err := store.Insert(ctx, res.Entry("u1", now)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	agg := NewAggregator(store, core.FixedClock(now))
	r, err := agg.Build(ctx, "u1", "hoje")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if r.Expense.Sum.String() != "50.00" || r.Expense.Count != 1 {
		t.Fatalf("expense = %s/%d", r.Expense.Sum, r.Expense.Count)
	}
	if len(r.Categories) != 1 || r.Categories[0].Category != core.CategoryFood {
		t.Fatalf("categories = %+v", r.Categories)
	}
	if pct := r.Categories[0].Sum.Percent(r.Expense.Sum).StringFixed(1); pct != "100.0" {
		t.Fatalf("percent = %s", pct)
	}
	text := Render(r)
	for _, want := range []string{
		"RELATÓRIO FINANCEIRO - HOJE",
		"Gastos: R$ 50.00 (1 lançamentos)",
		"• Alimentação: R$ 50.00 (100.0%)",
		"💸 15/03 - R$ 50.00 - mercado",
		"Gerado em 12:30 - 15/03/2024",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}
}

func TestNegativeBalance(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	store := memory.New()
	for _, msg := range []string{"Recebi 100 de venda", "Paguei 150 de aluguel"} {
		res := interpret.Interpret(msg)
		if _, err := store.Insert(ctx, res.Entry("u1", now)); err != nil {
			t.Fatal(err)
		}
	}
	r, err := NewAggregator(store, core.FixedClock(now)).Build(ctx, "u1", "mês")
	if err != nil {
		t.Fatal(err)
	}
	if r.Balance.String() != "-50.00" {
		t.Fatalf("balance = %s", r.Balance)
	}
	if !strings.Contains(Render(r), "**Saldo: R$ -50.00** ❌") {
		t.Fatalf("negative indicator missing:\n%s", Render(r))
	}
}

func TestRenderSplitPercentages(t *testing.T) {
	r := core.Report{
		Window:  core.Window{Label: "hoje"},
		Expense: core.KindTotals{Sum: core.NewMoney(30, 0), Count: 3},
		Balance: core.NewMoney(-30, 0),
		Categories: []core.CategoryTotal{
			{Category: core.CategoryFood, Sum: core.NewMoney(20, 0), Count: 2},
			{Category: core.CategoryTransport, Sum: core.NewMoney(10, 0), Count: 1},
		},
		GeneratedAt: time.Date(2024, 3, 15, 9, 5, 0, 0, time.UTC),
	}
	text := Render(r)
	for _, want := range []string{
		"• Alimentação: R$ 20.00 (66.7%)",
		"• Transporte: R$ 10.00 (33.3%)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q:\n%s", want, text)
		}
	}
}

func TestBuildCapsBreakdownAndRecent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)
	store := memory.New()
	cats := []core.Category{
		core.CategoryFood, core.CategoryTransport, core.CategoryHousing, core.CategoryHealth,
		core.CategoryLeisure, core.CategoryEducation, core.CategoryClothing,
		core.CategoryFood, core.CategoryTransport, core.CategoryHousing,
	}
	for i, cat := range cats {
		_, err := store.Insert(ctx, core.Entry{
			UserID: "u1", Kind: core.KindExpense, Amount: core.NewMoney(int64(10*(i+1)), 0),
			Description: "item", Category: cat,
			RecordedAt:    now.Add(time.Duration(i-len(cats)) * time.Minute),
			EffectiveDate: core.DateOf(now),
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	r, err := NewAggregator(store, core.FixedClock(now)).Build(ctx, "u1", "hoje")
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Categories) != TopCategoriesLimit || len(r.Recent) != RecentLimit {
		t.Fatalf("got %d categories and %d recent, want %d and %d",
			len(r.Categories), len(r.Recent), TopCategoriesLimit, RecentLimit)
	}
	if r.Categories[0].Category != core.CategoryHousing || r.Recent[0].Amount.String() != "100.00" {
		t.Fatalf("unexpected ordering: top %+v, newest %+v", r.Categories[0], r.Recent[0])
	}
	if r.Expense.Count != len(cats) {
		t.Fatalf("totals must cover every entry, got %d", r.Expense.Count)
	}
	text := Render(r)
	if n := strings.Count(text, "💸"); n != RecentLimit {
		t.Errorf("rendered %d recent lines, want %d", n, RecentLimit)
	}
}

func TestRenderEmpty(t *testing.T) {
	r := core.Report{
		Window:      core.Window{Label: LabelDefault},
		GeneratedAt: time.Date(2024, 3, 15, 9, 5, 0, 0, time.UTC),
	}
	text := Render(r)
	for _, want := range []string{
		"ÚLTIMOS 30 DIAS",
		"Saldo: R$ 0.00** ✅",
		"Nenhum lançamento encontrado no período.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "GASTOS POR CATEGORIA") {
		t.Error("empty report must not list categories")
	}
}

type failingReader struct {
	ledger.Reader
	err error
}

func (f failingReader) SumAndCount(context.Context, string, core.Kind, core.Window) (core.KindTotals, error) {
	return core.KindTotals{}, nil
}

func (f failingReader) TopCategories(context.Context, string, core.Window, int) ([]core.CategoryTotal, error) {
	return nil, f.err
}

func (f failingReader) Recent(context.Context, string, core.Window, int) ([]core.Entry, error) {
	return nil, nil
}

func TestBuildPersistenceFailure(t *testing.T) {
	cause := errors.New("database is locked")
	agg := NewAggregator(failingReader{err: cause}, core.FixedClock(time.Now()))
	_, err := agg.Build(context.Background(), "u1", "hoje")
	if !errors.Is(err, ledger.ErrPersistence) || !errors.Is(err, cause) {
		t.Fatalf("expected persistence error wrapping cause, got %v", err)
	}
}

type snapshotReader struct {
	*memory.Store
	snapshots int
	err       error
}

func (r *snapshotReader) ReadSnapshot(ctx context.Context, fn func(ledger.Reader) error) error {
	r.snapshots++
	if r.err != nil {
		return r.err
	}
	return r.Store.ReadSnapshot(ctx, fn)
}

func TestBuildReadsFromOneSnapshot(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	reader := &snapshotReader{Store: memory.New()}
	for _, msg := range []string{"Recebi 100 de venda", "Gastei 40 no mercado"} {
		if _, err := reader.Insert(ctx, interpret.Interpret(msg).Entry("u1", now)); err != nil {
			t.Fatal(err)
		}
	}

	r, err := NewAggregator(reader, core.FixedClock(now)).Build(ctx, "u1", "hoje")
	if err != nil {
		t.Fatal(err)
	}
	if reader.snapshots != 1 {
		t.Fatalf("snapshots = %d, want 1", reader.snapshots)
	}
	if r.Balance.String() != "60.00" || len(r.Recent) != 2 {
		t.Fatalf("report = balance %s, %d recent", r.Balance, len(r.Recent))
	}

	cause := errors.New("database is locked")
	reader.err = cause
	_, err = NewAggregator(reader, core.FixedClock(now)).Build(ctx, "u1", "hoje")
	if !errors.Is(err, ledger.ErrPersistence) || !errors.Is(err, cause) {
		t.Fatalf("expected persistence error wrapping cause, got %v", err)
	}
}
