// Package store loads the aggregate table into PostgreSQL.
//
// Loading is optional and happens after the CSV artifact has been written.
// Rows are inserted with the COPY protocol inside a single transaction, so a
// failed load leaves the target table untouched.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/adcombiner/internal/config"
	"github.com/JonMunkholm/adcombiner/internal/core"
	"github.com/JonMunkholm/adcombiner/internal/logging"
)

// Bookkeeping columns added in front of the schema columns.
var metaColumns = []string{"run_id", "source_file", "source_line"}

// DBTX is the subset of pgx used by the loader.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error)
}

// Connect opens and verifies a connection pool.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Loader copies aggregate rows into a table.
type Loader struct {
	pool   *pgxpool.Pool
	table  pgx.Identifier
	schema *core.Schema
}

// NewLoader creates a loader for a "table" or "schema.table" name.
func NewLoader(pool *pgxpool.Pool, table string, schema *core.Schema) *Loader {
	return &Loader{
		pool:   pool,
		table:  pgx.Identifier(strings.Split(table, ".")),
		schema: schema,
	}
}

// Load creates the target table if needed and copies all rows of t, tagged
// with runID. Returns the number of rows copied.
func (l *Loader) Load(ctx context.Context, runID uuid.UUID, t *core.Table) (int64, error) {
	logger := logging.FromContext(ctx)

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	n, err := copyTable(ctx, tx, l.table, l.schema, runID, t)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	logger.Info("aggregate loaded", slog.String("table", l.table.Sanitize()), slog.Int64("rows", n))
	return n, nil
}

func copyTable(ctx context.Context, db DBTX, table pgx.Identifier, schema *core.Schema, runID uuid.UUID, t *core.Table) (int64, error) {
	if _, err := db.Exec(ctx, CreateTableSQL(table, schema)); err != nil {
		return 0, fmt.Errorf("create table %s: %w", table.Sanitize(), err)
	}

	rows, err := CopyRows(schema, runID, t)
	if err != nil {
		return 0, err
	}

	n, err := db.CopyFrom(ctx, table, CopyColumns(schema), pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", table.Sanitize(), err)
	}
	return n, nil
}

// CreateTableSQL returns an idempotent CREATE TABLE statement for the schema.
// Decimal columns map to numeric, text columns to text.
func CreateTableSQL(table pgx.Identifier, schema *core.Schema) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(table.Sanitize())
	b.WriteString(" (\n")
	b.WriteString("\trun_id uuid NOT NULL,\n")
	b.WriteString("\tsource_file text NOT NULL,\n")
	b.WriteString("\tsource_line integer NOT NULL")

	for _, f := range schema.Fields() {
		colType := "text"
		if f.Type == core.FieldDecimal {
			colType = "numeric"
		}
		b.WriteString(",\n\t")
		b.WriteString(pgx.Identifier{ToDBColumnName(f.Name)}.Sanitize())
		b.WriteString(" ")
		b.WriteString(colType)
		b.WriteString(" NOT NULL")
	}

	b.WriteString("\n)")
	return b.String()
}

// CopyColumns returns the COPY column list: bookkeeping columns followed by
// the schema columns in schema order.
func CopyColumns(schema *core.Schema) []string {
	cols := append([]string(nil), metaColumns...)
	for _, name := range schema.Columns() {
		cols = append(cols, ToDBColumnName(name))
	}
	return cols
}

// CopyRows converts table rows to COPY values in CopyColumns order.
// Decimal values are sent as pgtype.Numeric, text as string.
func CopyRows(schema *core.Schema, runID uuid.UUID, t *core.Table) ([][]any, error) {
	fields := schema.Fields()
	id := pgtype.UUID{Bytes: runID, Valid: true}

	rows := make([][]any, 0, t.Len())
	for _, row := range t.Rows {
		if len(row.Values) != len(fields) {
			return nil, fmt.Errorf("%s line %d: expected %d values, got %d", row.Source, row.Line, len(fields), len(row.Values))
		}

		out := make([]any, 0, len(metaColumns)+len(fields))
		out = append(out, id, row.Source, int32(row.Line))

		for i, f := range fields {
			v := row.Values[i]
			switch f.Type {
			case core.FieldDecimal:
				n, err := toNumeric(v)
				if err != nil {
					return nil, fmt.Errorf("%s line %d: %s: %w", row.Source, row.Line, f.Name, err)
				}
				out = append(out, n)
			default:
				out = append(out, v.String())
			}
		}
		rows = append(rows, out)
	}

	return rows, nil
}

// toNumeric converts a decimal value to pgtype.Numeric. Text values are
// parsed first so unnormalized tables can still be loaded.
func toNumeric(v core.Value) (pgtype.Numeric, error) {
	f := v.Number
	if v.Kind != core.KindDecimal {
		var err error
		if f, err = core.ParseDecimal(v.Text); err != nil {
			return pgtype.Numeric{}, err
		}
	}

	var n pgtype.Numeric
	if err := n.ScanFloat64(pgtype.Float8{Float64: f, Valid: true}); err != nil {
		return pgtype.Numeric{}, fmt.Errorf("numeric %v: %w", f, err)
	}
	return n, nil
}

// ToDBColumnName converts a display column name to a database column name.
// "Cost Per Ad Click" -> "cost_per_ad_click", "CampaignID" -> "campaignid"
func ToDBColumnName(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}
