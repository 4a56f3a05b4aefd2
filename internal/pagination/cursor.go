// Package pagination implements keyset cursors for newest-first listings.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

// Cursor is the position after which the next page starts.
type Cursor struct {
	LastID    string
	Timestamp time.Time
}

// PageResult represents a paginated result set, newest first
type PageResult[T any] struct {
	Items   []T    `json:"items"`
	Cursor  string `json:"cursor,omitempty"`
	HasMore bool   `json:"hasMore"`
}

var ErrInvalidCursor = errors.New("invalid cursor format")

type cursorPayload struct {
	ID string    `json:"i"`
	TS time.Time `json:"t"`
}

// EncodeCursor returns an opaque, query-string safe cursor for the item with
// lastID created at timestamp.
func EncodeCursor(lastID string, timestamp time.Time) string {
	if lastID == "" {
		return ""
	}
	raw, _ := json.Marshal(cursorPayload{ID: lastID, TS: timestamp.UTC()})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses a cursor produced by EncodeCursor. An empty cursor
// means the first page and yields nil.
func DecodeCursor(cursor string) (*Cursor, error) {
	if cursor == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var p cursorPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.ID == "" || p.TS.IsZero() {
		return nil, ErrInvalidCursor
	}

	return &Cursor{LastID: p.ID, Timestamp: p.TS}, nil
}

// Paginate turns a query that fetched limit+1 rows into one page. key
// returns the id and timestamp that order an item.
func Paginate[T any](rows []T, limit int, key func(T) (string, time.Time)) PageResult[T] {
	page := PageResult[T]{Items: rows}
	if page.Items == nil {
		page.Items = []T{}
	}
	if limit <= 0 || len(rows) <= limit {
		return page
	}

	page.Items = rows[:limit]
	page.HasMore = true
	id, ts := key(page.Items[limit-1])
	page.Cursor = EncodeCursor(id, ts)
	return page
}
