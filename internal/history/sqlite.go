package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/Simplici0/unitecon/internal/clock"
	"github.com/Simplici0/unitecon/internal/snapshot"
)

// Fixed width keeps the text column sortable.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000Z"

// SQLite persists records in a local database file.
type SQLite struct {
	db    *sql.DB
	clock clock.Clock
	q     queries
}

func NewSQLite(db *sql.DB, c clock.Clock) *SQLite {
	return &SQLite{db: db, clock: c, q: newQueries(sq.Question)}
}

func (s *SQLite) Backend() string { return "sqlite" }

func (s *SQLite) Save(ctx context.Context, snap snapshot.Snapshot, document []byte) (string, error) {
	values, err := rowValues(snap, document)
	if err != nil {
		return "", err
	}
	values["created_at"] = s.clock.Now().UTC().Format(sqliteTimeLayout)

	query, args, err := s.q.insert(values).ToSql()
	if err != nil {
		return "", fmt.Errorf("build insert: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return "", fmt.Errorf("insert calculation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("read inserted id: %w", err)
	}

	return strconv.FormatInt(id, 10), nil
}

func (s *SQLite) List(ctx context.Context, limit int) ([]Summary, error) {
	query, args, err := s.q.list(limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list calculations: %w", err)
	}
	defer rows.Close()

	out := make([]Summary, 0)
	for rows.Next() {
		var (
			id          int64
			createdAt   string
			title       string
			payload     []byte
			hasDocument bool
		)
		if err := rows.Scan(&id, &createdAt, &title, &payload, &hasDocument); err != nil {
			return nil, fmt.Errorf("scan calculation: %w", err)
		}
		at, err := time.Parse(sqliteTimeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at of %d: %w", id, err)
		}
		out = append(out, rowSummary(id, at, title, payload, hasDocument))
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func (s *SQLite) FetchDocument(ctx context.Context, id string) ([]byte, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}

	query, args, err := s.q.document(key).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build document query: %w", err)
	}

	var encoded sql.NullString
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&encoded); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch document %s: %w", id, err)
	}
	if !encoded.Valid {
		return nil, ErrNotFound
	}

	return decodeDocument(&encoded.String)
}

func (s *SQLite) FetchSnapshot(ctx context.Context, id string) (snapshot.Snapshot, error) {
	key, err := parseID(id)
	if err != nil {
		return snapshot.Snapshot{}, err
	}

	query, args, err := s.q.snapshot(key).ToSql()
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("build snapshot query: %w", err)
	}

	var payload []byte
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return snapshot.Snapshot{}, ErrNotFound
		}
		return snapshot.Snapshot{}, fmt.Errorf("fetch snapshot %s: %w", id, err)
	}

	return snapshot.Decode(payload)
}
