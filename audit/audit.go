package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/nutricoach/helper"
	"github.com/siherrmann/nutricoach/model"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS answer_log (
	id            TEXT PRIMARY KEY,
	query         TEXT NOT NULL,
	parent_query  TEXT,
	anchor        TEXT NOT NULL,
	retrieved     TEXT NOT NULL,
	outcome       TEXT NOT NULL,
	error         TEXT,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_answer_log_created_at ON answer_log (created_at);
`

// Entry is one answered request
type Entry struct {
	ID          uuid.UUID     `json:"id"`
	Query       string        `json:"query"`
	ParentQuery string        `json:"parent_query,omitempty"`
	Anchor      string        `json:"anchor"`
	Retrieved   []string      `json:"retrieved"`
	Outcome     model.Outcome `json:"outcome"`
	Error       string        `json:"error,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// NewEntry builds the log entry of an answered query
func NewEntry(q model.Query, trace model.Trace) Entry {
	return Entry{
		ID:          uuid.New(),
		Query:       q.Query,
		ParentQuery: q.ParentQuery,
		Anchor:      trace.Anchor,
		Retrieved:   trace.Retrieved,
		Outcome:     trace.Outcome,
		Error:       trace.Error,
		CreatedAt:   time.Now().UTC(),
	}
}

// Log records which ingredient records every answer was based on in SQLite
type Log struct {
	db *sql.DB
}

// Open opens the SQLite database at path and creates the answer_log table.
// ":memory:" gives a private in-memory log.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, helper.NewError("open audit db", err)
	}
	// One connection, so ":memory:" databases are shared by all calls
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, helper.NewError("migrate audit db", err)
	}

	return &Log{db: db}, nil
}

// Record writes entry. Missing ID and CreatedAt are filled in.
func (l *Log) Record(ctx context.Context, entry Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	retrieved := entry.Retrieved
	if retrieved == nil {
		retrieved = []string{}
	}
	retrievedJSON, err := json.Marshal(retrieved)
	if err != nil {
		return helper.NewError("marshal retrieved", err)
	}

	_, err = l.db.ExecContext(
		ctx,
		`INSERT INTO answer_log (id, query, parent_query, anchor, retrieved, outcome, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID.String(),
		entry.Query,
		nullIfEmpty(entry.ParentQuery),
		entry.Anchor,
		string(retrievedJSON),
		string(entry.Outcome),
		nullIfEmpty(entry.Error),
		entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return helper.NewError("record answer", err)
	}
	return nil
}

// Recent returns the last n entries, newest first
func (l *Log) Recent(ctx context.Context, n int) ([]Entry, error) {
	rows, err := l.db.QueryContext(
		ctx,
		`SELECT id, query, parent_query, anchor, retrieved, outcome, error, created_at
		 FROM answer_log ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		n,
	)
	if err != nil {
		return nil, helper.NewError("query answers", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var entry Entry
		var id, retrieved, outcome, createdAt string
		var parentQuery, errText sql.NullString
		if err := rows.Scan(&id, &entry.Query, &parentQuery, &entry.Anchor, &retrieved, &outcome, &errText, &createdAt); err != nil {
			return nil, helper.NewError("scan answer", err)
		}

		entry.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, helper.NewError("parse id", err)
		}
		if err := json.Unmarshal([]byte(retrieved), &entry.Retrieved); err != nil {
			return nil, helper.NewError("unmarshal retrieved", err)
		}
		entry.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, helper.NewError("parse created_at", err)
		}
		entry.ParentQuery = parentQuery.String
		entry.Error = errText.String
		entry.Outcome = model.Outcome(outcome)

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return entries, nil
}

// Close closes the database
func (l *Log) Close() error {
	return l.db.Close()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// String formats an entry for the command line
func (e Entry) String() string {
	return fmt.Sprintf("%s %s %q %v", e.CreatedAt.Format(time.RFC3339), e.Outcome, e.Query, e.Retrieved)
}
