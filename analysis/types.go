package analysis

import (
	"context"
	"database/sql"

	"github.com/Alain-L/slowq/config"
)

// ExistingIndex is an index read from the live catalog.
type ExistingIndex struct {
	Name    string   `json:"name"`
	Unique  bool     `json:"unique"`
	Columns []string `json:"columns"` // lower-cased, in declared order

	// Definition is the raw catalog text (PostgreSQL indexdef), empty when
	// the catalog has none.
	Definition string `json:"definition,omitempty"`
}

// Column describes one column of a host table.
type Column struct {
	Name      string         `db:"column_name" json:"name"`
	Type      string         `db:"data_type" json:"type"`
	MaxLength sql.NullInt64  `db:"max_length" json:"-"`
	Nullable  string         `db:"is_nullable" json:"-"`
	Default   sql.NullString `db:"column_default" json:"-"`
}

// NotNull reports whether the column rejects NULLs.
func (c Column) NotNull() bool {
	return c.Nullable == "NO"
}

// IndexCandidate is a proposed composite index for one table.
type IndexCandidate struct {
	Columns []string
	Reason  string
}

// ColumnUsage collects how one table's columns are used by a statement.
type ColumnUsage struct {
	Eq    []string // equality and join keys
	Range []string // inequality and LIKE keys
	Order []string
	Group []string

	Candidates []IndexCandidate
}

// Suggestion is an advisory index proposal. It is never persisted or executed.
type Suggestion struct {
	Table   string   `json:"table"`
	Columns []string `json:"columns"`
	Reason  string   `json:"reason"`
	Create  string   `json:"create"`
}

// IndexLister reads the existing indexes of an unprefixed host table.
type IndexLister interface {
	Indexes(ctx context.Context, target config.Target, table string) ([]ExistingIndex, error)
}

// Catalog is the read-only schema surface the detail report needs.
type Catalog interface {
	IndexLister
	Columns(ctx context.Context, target config.Target, table string) ([]Column, error)
	RowCount(ctx context.Context, target config.Target, table string) (int64, error)
}
