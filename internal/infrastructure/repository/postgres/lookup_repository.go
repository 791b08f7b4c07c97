package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mehranbolhasani/weekeepediabot/internal/core/domain"
)

// LookupRepository persists the resolution history consumed from the event
// queue and read back by the API.
type LookupRepository struct {
	db *sql.DB
}

func NewLookupRepository(db *sql.DB) *LookupRepository {
	return &LookupRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *LookupRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082601)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS lookups (
	id TEXT PRIMARY KEY,
	query TEXT NOT NULL,
	status TEXT NOT NULL,
	title TEXT,
	url TEXT,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lookups_created_at ON lookups(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *LookupRepository) Record(ctx context.Context, event domain.LookupEvent) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO lookups (id, query, status, title, url, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO NOTHING
`,
		event.ID, event.Query, string(event.Status), event.Title, event.URL, event.At.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert lookup: %w", err)
	}
	return nil
}

func (r *LookupRepository) ListRecent(ctx context.Context, limit int) ([]domain.LookupEvent, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, query, status, title, url, created_at
FROM lookups
ORDER BY created_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query lookups: %w", err)
	}
	defer rows.Close()

	var events []domain.LookupEvent
	for rows.Next() {
		var event domain.LookupEvent
		var status string
		var title, url sql.NullString
		if err := rows.Scan(&event.ID, &event.Query, &status, &title, &url, &event.At); err != nil {
			return nil, fmt.Errorf("scan lookup: %w", err)
		}
		event.Status = domain.OutcomeStatus(status)
		event.Title = title.String
		event.URL = url.String
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lookups: %w", err)
	}
	return events, nil
}
