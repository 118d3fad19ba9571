package storage

import (
	"context"
	"database/sql"
	"fmt"
)

const lancamentoColumns = `id, usuario, tipo, valor_centavos, descricao, categoria, data_lancamento, data_efetiva, origem, espelhado_em`

// PeriodFilter restricts data_efetiva. Clause holds exactly one placeholder.
type PeriodFilter struct {
	Clause string
	Arg    string
}

const createLancamento = `-- name: CreateLancamento :one
INSERT INTO lancamentos (usuario, tipo, valor_centavos, descricao, categoria, data_lancamento, data_efetiva, origem)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id
`

type CreateLancamentoParams struct {
	Usuario        string
	Tipo           string
	ValorCentavos  int64
	Descricao      string
	Categoria      string
	DataLancamento int64
	DataEfetiva    string
	Origem         string
}

func (q *Queries) CreateLancamento(ctx context.Context, arg CreateLancamentoParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createLancamento,
		arg.Usuario,
		arg.Tipo,
		arg.ValorCentavos,
		arg.Descricao,
		arg.Categoria,
		arg.DataLancamento,
		arg.DataEfetiva,
		arg.Origem,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getLancamento = `-- name: GetLancamento :one
SELECT ` + lancamentoColumns + ` FROM lancamentos WHERE id = ?
`

func (q *Queries) GetLancamento(ctx context.Context, id int64) (Lancamento, error) {
	row := q.db.QueryRowContext(ctx, getLancamento, id)
	var i Lancamento
	err := scanLancamento(row, &i)
	return i, err
}

const sumByKind = `-- name: SumByKind :one
SELECT COALESCE(SUM(valor_centavos), 0), COUNT(*)
FROM lancamentos
WHERE usuario = ? AND tipo = ? AND %s
`

type SumByKindParams struct {
	Usuario string
	Tipo    string
	Period  PeriodFilter
}

type SumByKindRow struct {
	TotalCentavos int64
	Quantidade    int64
}

func (q *Queries) SumByKind(ctx context.Context, arg SumByKindParams) (SumByKindRow, error) {
	query := fmt.Sprintf(sumByKind, arg.Period.Clause)
	row := q.db.QueryRowContext(ctx, query, arg.Usuario, arg.Tipo, arg.Period.Arg)
	var i SumByKindRow
	err := row.Scan(&i.TotalCentavos, &i.Quantidade)
	return i, err
}

const topExpenseCategories = `-- name: TopExpenseCategories :many
SELECT categoria, SUM(valor_centavos) AS total, COUNT(*)
FROM lancamentos
WHERE usuario = ? AND tipo = 'gasto' AND %s
GROUP BY categoria
ORDER BY total DESC, categoria ASC
LIMIT ?
`

type TopExpenseCategoriesParams struct {
	Usuario string
	Period  PeriodFilter
	Limit   int64
}

type TopExpenseCategoriesRow struct {
	Categoria     string
	TotalCentavos int64
	Quantidade    int64
}

func (q *Queries) TopExpenseCategories(ctx context.Context, arg TopExpenseCategoriesParams) ([]TopExpenseCategoriesRow, error) {
	query := fmt.Sprintf(topExpenseCategories, arg.Period.Clause)
	rows, err := q.db.QueryContext(ctx, query, arg.Usuario, arg.Period.Arg, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TopExpenseCategoriesRow
	for rows.Next() {
		var i TopExpenseCategoriesRow
		if err := rows.Scan(&i.Categoria, &i.TotalCentavos, &i.Quantidade); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const recentLancamentos = `-- name: RecentLancamentos :many
SELECT ` + lancamentoColumns + `
FROM lancamentos
WHERE usuario = ? AND %s
ORDER BY data_lancamento DESC, id DESC
LIMIT ?
`

type RecentLancamentosParams struct {
	Usuario string
	Period  PeriodFilter
	Limit   int64
}

func (q *Queries) RecentLancamentos(ctx context.Context, arg RecentLancamentosParams) ([]Lancamento, error) {
	query := fmt.Sprintf(recentLancamentos, arg.Period.Clause)
	rows, err := q.db.QueryContext(ctx, query, arg.Usuario, arg.Period.Arg, arg.Limit)
	if err != nil {
		return nil, err
	}
	return collectLancamentos(rows)
}

const pendingMirror = `-- name: PendingMirror :many
SELECT ` + lancamentoColumns + `
FROM lancamentos
WHERE espelhado_em IS NULL
ORDER BY id ASC
LIMIT ?
`

func (q *Queries) PendingMirror(ctx context.Context, limit int64) ([]Lancamento, error) {
	rows, err := q.db.QueryContext(ctx, pendingMirror, limit)
	if err != nil {
		return nil, err
	}
	return collectLancamentos(rows)
}

const markMirrored = `-- name: MarkMirrored :execrows
UPDATE lancamentos SET espelhado_em = ? WHERE id = ?
`

func (q *Queries) MarkMirrored(ctx context.Context, at, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, markMirrored, at, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const ledgerStats = `-- name: LedgerStats :one
SELECT COUNT(*), COUNT(DISTINCT usuario) FROM lancamentos
`

type LedgerStatsRow struct {
	Lancamentos int64
	Usuarios    int64
}

func (q *Queries) LedgerStats(ctx context.Context) (LedgerStatsRow, error) {
	row := q.db.QueryRowContext(ctx, ledgerStats)
	var i LedgerStatsRow
	err := row.Scan(&i.Lancamentos, &i.Usuarios)
	return i, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLancamento(s scanner, i *Lancamento) error {
	return s.Scan(
		&i.ID,
		&i.Usuario,
		&i.Tipo,
		&i.ValorCentavos,
		&i.Descricao,
		&i.Categoria,
		&i.DataLancamento,
		&i.DataEfetiva,
		&i.Origem,
		&i.EspelhadoEm,
	)
}

func collectLancamentos(rows *sql.Rows) ([]Lancamento, error) {
	defer rows.Close()
	var items []Lancamento
	for rows.Next() {
		var i Lancamento
		if err := scanLancamento(rows, &i); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
