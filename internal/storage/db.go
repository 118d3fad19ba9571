package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{
		db: tx,
	}
}

// Lancamento is one row of the lancamentos table.
type Lancamento struct {
	ID             int64
	Usuario        string
	Tipo           string
	ValorCentavos  int64
	Descricao      string
	Categoria      string
	DataLancamento int64
	DataEfetiva    string
	Origem         string
	EspelhadoEm    sql.NullInt64
}
