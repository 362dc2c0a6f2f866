package history

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Simplici0/unitecon/internal/snapshot"
)

// Postgres persists records in a shared PostgreSQL database. created_at is
// assigned by the database.
type Postgres struct {
	pool *pgxpool.Pool
	q    queries
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool, q: newQueries(sq.Dollar)}
}

func (p *Postgres) Backend() string { return "postgres" }

func (p *Postgres) Save(ctx context.Context, s snapshot.Snapshot, document []byte) (string, error) {
	values, err := rowValues(s, document)
	if err != nil {
		return "", err
	}

	query, args, err := p.q.insert(values).Suffix("RETURNING id").ToSql()
	if err != nil {
		return "", fmt.Errorf("build insert: %w", err)
	}

	var id int64
	if err := p.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return "", fmt.Errorf("insert calculation: %w", err)
	}

	return strconv.FormatInt(id, 10), nil
}

func (p *Postgres) List(ctx context.Context, limit int) ([]Summary, error) {
	query, args, err := p.q.list(limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list calculations: %w", err)
	}
	defer rows.Close()

	out := make([]Summary, 0)
	for rows.Next() {
		var (
			id          int64
			createdAt   time.Time
			title       string
			payload     []byte
			hasDocument bool
		)
		if err := rows.Scan(&id, &createdAt, &title, &payload, &hasDocument); err != nil {
			return nil, fmt.Errorf("scan calculation: %w", err)
		}
		out = append(out, rowSummary(id, createdAt, title, payload, hasDocument))
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func (p *Postgres) FetchDocument(ctx context.Context, id string) ([]byte, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}

	query, args, err := p.q.document(key).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build document query: %w", err)
	}

	var encoded *string
	if err := p.pool.QueryRow(ctx, query, args...).Scan(&encoded); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch document %s: %w", id, err)
	}

	return decodeDocument(encoded)
}

func (p *Postgres) FetchSnapshot(ctx context.Context, id string) (snapshot.Snapshot, error) {
	key, err := parseID(id)
	if err != nil {
		return snapshot.Snapshot{}, err
	}

	query, args, err := p.q.snapshot(key).ToSql()
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("build snapshot query: %w", err)
	}

	var payload []byte
	if err := p.pool.QueryRow(ctx, query, args...).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return snapshot.Snapshot{}, ErrNotFound
		}
		return snapshot.Snapshot{}, fmt.Errorf("fetch snapshot %s: %w", id, err)
	}

	return snapshot.Decode(payload)
}
