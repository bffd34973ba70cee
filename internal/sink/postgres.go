package sink

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dgallion1/notegest/internal/export"
	"github.com/dgallion1/notegest/internal/extract"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Postgres inserts every entry of an export into one table.
type Postgres struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgres connects and creates the table if needed.
func NewPostgres(ctx context.Context, dsn, table string) (*Postgres, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	p := &Postgres{pool: pool, table: pgx.Identifier{table}.Sanitize()}
	if err := p.ensureTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) Name() string { return "postgres" }

func (p *Postgres) Close() { p.pool.Close() }

func (p *Postgres) ensureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id              BIGSERIAL PRIMARY KEY,
		run_id          TEXT NOT NULL,
		source_notebook TEXT NOT NULL,
		source_section  TEXT NOT NULL,
		source_page     TEXT NOT NULL,
		raw_content     TEXT NOT NULL,
		underwriter     TEXT,
		company         TEXT,
		broker          TEXT,
		dates           TEXT,
		primary_date    TEXT,
		amounts         TEXT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, p.table)
	if _, err := p.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// Publish inserts all entries in one transaction, tagged with the export
// stem as run_id.
func (p *Postgres) Publish(ctx context.Context, files export.Files, entries []extract.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	insert := fmt.Sprintf(`INSERT INTO %s
		(run_id, source_notebook, source_section, source_page, raw_content,
		 underwriter, company, broker, dates, primary_date, amounts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, p.table)

	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, e := range entries {
			batch.Queue(insert,
				files.Stem, e.SourceNotebook, e.SourceSection, e.SourcePage, e.RawContent,
				nullable(e.Underwriter), nullable(e.Company), nullable(e.Broker),
				nullable(e.Dates), nullable(e.PrimaryDate), nullable(e.Amounts),
			)
		}

		results := tx.SendBatch(ctx, batch)
		for i := range entries {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("insert entry %d: %w", i, err)
			}
		}
		return results.Close()
	})
}

// CountRun returns how many rows a run inserted.
func (p *Postgres) CountRun(ctx context.Context, runID string) (int, error) {
	var n int
	err := p.pool.QueryRow(ctx, fmt.Sprintf(`SELECT count(*) FROM %s WHERE run_id = $1`, p.table), runID).Scan(&n)
	return n, err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
