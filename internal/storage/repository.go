package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"assistente/internal/core"
	"assistente/internal/ledger"

	_ "modernc.org/sqlite"
)

// Pragmas applied to every connection: readers keep working while a write is
// in flight (WAL) and writers wait for the lock instead of failing at once.
const dsnPragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

// SQLiteRepository is the ledger store backed by a single SQLite file.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

// DSN returns the connection string used for dbPath.
func DSN(dbPath string) string {
	return dbPath + "?" + dsnPragmas
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := DSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Insert implements ledger.Writer. The row is written inside a transaction
// so concurrent report queries never see it half-written.
func (r *SQLiteRepository) Insert(ctx context.Context, e core.Entry) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, fmt.Errorf("validate entry: %w", err)
	}
	if e.Source == "" {
		e.Source = core.DefaultSource
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, ledger.Persistence("begin insert", err)
	}
	defer tx.Rollback()

	id, err := r.queries.WithTx(tx).CreateLancamento(ctx, CreateLancamentoParams{
		Usuario:        e.UserID,
		Tipo:           string(e.Kind),
		ValorCentavos:  e.Amount.Cents(),
		Descricao:      e.Description,
		Categoria:      string(e.Category),
		DataLancamento: e.RecordedAt.UnixNano(),
		DataEfetiva:    e.EffectiveDate.String(),
		Origem:         e.Source,
	})
	if err != nil {
		return 0, ledger.Persistence("create lancamento", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, ledger.Persistence("commit insert", err)
	}

	slog.InfoContext(ctx, "Entry saved to SQLite",
		"id", id,
		"user", e.UserID,
		"kind", e.Kind.String(),
		"amount_cents", e.Amount.Cents(),
		"category", e.Category.String())

	return id, nil
}

// SumAndCount implements ledger.Reader.
func (r *SQLiteRepository) SumAndCount(ctx context.Context, userID string, kind core.Kind, w core.Window) (core.KindTotals, error) {
	row, err := r.queries.SumByKind(ctx, SumByKindParams{
		Usuario: userID,
		Tipo:    string(kind),
		Period:  periodFilter(w),
	})
	if err != nil {
		return core.KindTotals{}, ledger.Persistence("sum by kind", err)
	}
	return core.KindTotals{Sum: core.MoneyFromCents(row.TotalCentavos), Count: int(row.Quantidade)}, nil
}

// TopCategories implements ledger.Reader.
func (r *SQLiteRepository) TopCategories(ctx context.Context, userID string, w core.Window, limit int) ([]core.CategoryTotal, error) {
	rows, err := r.queries.TopExpenseCategories(ctx, TopExpenseCategoriesParams{
		Usuario: userID,
		Period:  periodFilter(w),
		Limit:   int64(limit),
	})
	if err != nil {
		return nil, ledger.Persistence("top categories", err)
	}

	out := make([]core.CategoryTotal, len(rows))
	for i, row := range rows {
		out[i] = core.CategoryTotal{
			Category: core.Category(row.Categoria),
			Sum:      core.MoneyFromCents(row.TotalCentavos),
			Count:    int(row.Quantidade),
		}
	}
	return out, nil
}

// Recent implements ledger.Reader.
func (r *SQLiteRepository) Recent(ctx context.Context, userID string, w core.Window, limit int) ([]core.Entry, error) {
	rows, err := r.queries.RecentLancamentos(ctx, RecentLancamentosParams{
		Usuario: userID,
		Period:  periodFilter(w),
		Limit:   int64(limit),
	})
	if err != nil {
		return nil, ledger.Persistence("recent lancamentos", err)
	}
	return toEntries(rows)
}

// ReadSnapshot implements ledger.Snapshotter. SQLite pins the WAL snapshot
// at the first read of a transaction, so every query fn issues through the
// Reader sees the same committed state. The transaction never writes and is
// always rolled back.
func (r *SQLiteRepository) ReadSnapshot(ctx context.Context, fn func(ledger.Reader) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.Persistence("begin read snapshot", err)
	}
	defer tx.Rollback()

	return fn(&SQLiteRepository{db: r.db, queries: r.queries.WithTx(tx)})
}

// Stats implements ledger.Stats.
func (r *SQLiteRepository) Stats(ctx context.Context) (core.LedgerStats, error) {
	row, err := r.queries.LedgerStats(ctx)
	if err != nil {
		return core.LedgerStats{}, ledger.Persistence("ledger stats", err)
	}
	return core.LedgerStats{Entries: row.Lancamentos, Users: row.Usuarios}, nil
}

// Ping implements ledger.Stats.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return ledger.Persistence("ping", r.db.PingContext(ctx))
}

// Get implements ledger.Mirror.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (core.Entry, error) {
	row, err := r.queries.GetLancamento(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Entry{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.Entry{}, ledger.Persistence("get lancamento", err)
	}
	return toEntry(row)
}

// Mirrored implements ledger.Mirror.
func (r *SQLiteRepository) Mirrored(ctx context.Context, id int64) (bool, error) {
	row, err := r.queries.GetLancamento(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ledger.ErrNotFound
	}
	if err != nil {
		return false, ledger.Persistence("get lancamento", err)
	}
	return row.EspelhadoEm.Valid, nil
}

// PendingMirror implements ledger.Mirror.
func (r *SQLiteRepository) PendingMirror(ctx context.Context, limit int) ([]core.Entry, error) {
	rows, err := r.queries.PendingMirror(ctx, int64(limit))
	if err != nil {
		return nil, ledger.Persistence("pending mirror", err)
	}
	return toEntries(rows)
}

// MarkMirrored implements ledger.Mirror.
func (r *SQLiteRepository) MarkMirrored(ctx context.Context, id int64, at time.Time) error {
	n, err := r.queries.MarkMirrored(ctx, at.UnixNano(), id)
	if err != nil {
		return ledger.Persistence("mark mirrored", err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	slog.DebugContext(ctx, "Entry marked as mirrored", "id", id)
	return nil
}

func periodFilter(w core.Window) PeriodFilter {
	switch w.Mode {
	case core.WindowDay:
		return PeriodFilter{Clause: "data_efetiva = ?", Arg: w.Start.String()}
	case core.WindowMonth:
		return PeriodFilter{Clause: "substr(data_efetiva, 1, 7) = ?", Arg: w.Start.MonthKey()}
	default:
		return PeriodFilter{Clause: "data_efetiva >= ?", Arg: w.Start.String()}
	}
}

func toEntries(rows []Lancamento) ([]core.Entry, error) {
	out := make([]core.Entry, 0, len(rows))
	for _, row := range rows {
		e, err := toEntry(row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func toEntry(row Lancamento) (core.Entry, error) {
	day, err := core.ParseDate(row.DataEfetiva)
	if err != nil {
		return core.Entry{}, ledger.Persistence("parse data_efetiva", fmt.Errorf("row %d: %w", row.ID, err))
	}
	return core.Entry{
		ID:            row.ID,
		UserID:        row.Usuario,
		Kind:          core.Kind(row.Tipo),
		Amount:        core.MoneyFromCents(row.ValorCentavos),
		Description:   row.Descricao,
		Category:      core.Category(row.Categoria),
		RecordedAt:    time.Unix(0, row.DataLancamento),
		EffectiveDate: day,
		Source:        row.Origem,
	}, nil
}

var (
	_ ledger.Store  = (*SQLiteRepository)(nil)
	_ ledger.Mirror = (*SQLiteRepository)(nil)
)
