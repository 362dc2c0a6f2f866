package history

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/Simplici0/unitecon/internal/snapshot"
)

const calculationsTable = "calculations"

var summaryColumns = []string{"id", "created_at", "title", "snapshot", "pdf_base64 IS NOT NULL"}

// queries builds the statements shared by the SQL backends; only the
// placeholder format differs between them.
type queries struct {
	sb sq.StatementBuilderType
}

func newQueries(format sq.PlaceholderFormat) queries {
	return queries{sb: sq.StatementBuilder.PlaceholderFormat(format)}
}

func (q queries) insert(values map[string]any) sq.InsertBuilder {
	return q.sb.Insert(calculationsTable).SetMap(values)
}

func (q queries) list(limit int) sq.SelectBuilder {
	b := q.sb.
		Select(summaryColumns...).
		From(calculationsTable).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	return b
}

func (q queries) document(id int64) sq.SelectBuilder {
	return q.sb.Select("pdf_base64").From(calculationsTable).Where(sq.Eq{"id": id})
}

func (q queries) snapshot(id int64) sq.SelectBuilder {
	return q.sb.Select("snapshot").From(calculationsTable).Where(sq.Eq{"id": id})
}

// rowValues prepares the payload columns of a new row.
func rowValues(s snapshot.Snapshot, document []byte) (map[string]any, error) {
	payload, err := snapshot.Encode(s)
	if err != nil {
		return nil, err
	}

	var encoded *string
	if document != nil {
		v := base64.StdEncoding.EncodeToString(document)
		encoded = &v
	}

	return map[string]any{
		"title":      s.Title,
		"snapshot":   string(payload),
		"pdf_base64": encoded,
	}, nil
}

func decodeDocument(encoded *string) ([]byte, error) {
	if encoded == nil {
		return nil, ErrNotFound
	}
	doc, err := base64.StdEncoding.DecodeString(*encoded)
	if err != nil {
		return nil, fmt.Errorf("decode stored document: %w", err)
	}
	return doc, nil
}

// parseID maps ids that no SQL backend could have issued to ErrNotFound.
func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrNotFound
	}
	return n, nil
}

// rowSummary summarizes a stored row. Rows whose payload no longer decodes
// are still listed by title so they stay visible.
func rowSummary(id int64, createdAt time.Time, title string, payload []byte, hasDocument bool) Summary {
	key := strconv.FormatInt(id, 10)

	s, err := snapshot.Decode(payload)
	if err != nil {
		return Summary{ID: key, CreatedAt: createdAt, Title: title, HasDocument: hasDocument}
	}
	sum := summarize(key, createdAt, s, hasDocument)
	if sum.Title == "" {
		sum.Title = title
	}
	return sum
}
