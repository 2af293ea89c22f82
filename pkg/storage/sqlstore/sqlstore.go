// Package sqlstore implements storage.Driver on database/sql. The sqlite and
// postgres drivers share it and differ only in their Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/papercomputeco/genai/pkg/storage"
)

// Dialect holds the SQL differences between databases.
type Dialect struct {
	// Name is used in error messages.
	Name string

	// Placeholder returns the bind parameter for the n-th argument, from 1.
	Placeholder func(n int) string
}

// SQLite uses "?" placeholders.
var SQLite = Dialect{
	Name:        "sqlite",
	Placeholder: func(int) string { return "?" },
}

// Postgres uses "$n" placeholders.
var Postgres = Dialect{
	Name:        "postgres",
	Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
}

// Recorded times are stored as Unix nanoseconds so both databases scan
// them, including through aggregates, without driver specific handling.
const schema = `CREATE TABLE IF NOT EXISTS stream_records (
	session_id  TEXT    NOT NULL,
	sequence    INTEGER NOT NULL,
	provider    TEXT    NOT NULL,
	model       TEXT    NOT NULL,
	kind        TEXT    NOT NULL,
	payload     TEXT    NOT NULL,
	error       TEXT    NOT NULL,
	recorded_at BIGINT  NOT NULL,
	PRIMARY KEY (session_id, sequence)
)`

// Store implements storage.Driver on a *sql.DB.
type Store struct {
	DB      *sql.DB
	dialect Dialect

	insertSQL  string
	recordsSQL string
}

// New creates the schema if needed and returns a Store using db.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Store, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	s := &Store{DB: db, dialect: dialect}
	s.insertSQL = fmt.Sprintf(
		`INSERT INTO stream_records
			(session_id, sequence, provider, model, kind, payload, error, recorded_at)
		VALUES (%s)
		ON CONFLICT (session_id, sequence) DO NOTHING`,
		s.placeholders(8),
	)
	s.recordsSQL = fmt.Sprintf(
		`SELECT session_id, sequence, provider, model, kind, payload, error, recorded_at
		FROM stream_records
		WHERE session_id = %s
		ORDER BY sequence`,
		dialect.Placeholder(1),
	)
	return s, nil
}

func (s *Store) placeholders(n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = s.dialect.Placeholder(i + 1)
	}
	return strings.Join(ps, ", ")
}

// PutRecord stores a record. Returns false if the session already holds a
// record with the same sequence.
func (s *Store) PutRecord(ctx context.Context, record *storage.Record) (bool, error) {
	if err := record.Validate(); err != nil {
		return false, err
	}

	res, err := s.DB.ExecContext(ctx, s.insertSQL,
		record.SessionID,
		record.Sequence,
		record.Provider,
		record.Model,
		string(record.Kind),
		record.Payload,
		record.Error,
		record.RecordedAt.UnixNano(),
	)
	if err != nil {
		return false, fmt.Errorf("%s: inserting record: %w", s.dialect.Name, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: inserting record: %w", s.dialect.Name, err)
	}
	return n > 0, nil
}

// Records returns the records of a session ordered by sequence.
func (s *Store) Records(ctx context.Context, sessionID string) ([]*storage.Record, error) {
	rows, err := s.DB.QueryContext(ctx, s.recordsSQL, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: querying records: %w", s.dialect.Name, err)
	}
	defer rows.Close()

	var records []*storage.Record
	for rows.Next() {
		var (
			r          storage.Record
			kind       string
			recordedAt int64
		)
		if err := rows.Scan(&r.SessionID, &r.Sequence, &r.Provider, &r.Model, &kind, &r.Payload, &r.Error, &recordedAt); err != nil {
			return nil, fmt.Errorf("%s: scanning record: %w", s.dialect.Name, err)
		}
		r.Kind = storage.Kind(kind)
		r.RecordedAt = time.Unix(0, recordedAt).UTC()
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: reading records: %w", s.dialect.Name, err)
	}

	if len(records) == 0 {
		return nil, storage.NotFoundError{SessionID: sessionID}
	}
	return records, nil
}

const sessionsSQL = `SELECT session_id, MIN(provider), MIN(model), COUNT(*), MIN(recorded_at), MAX(recorded_at)
FROM stream_records
GROUP BY session_id
ORDER BY MIN(recorded_at), session_id`

// Sessions summarizes every session, oldest first.
func (s *Store) Sessions(ctx context.Context) ([]*storage.Session, error) {
	rows, err := s.DB.QueryContext(ctx, sessionsSQL)
	if err != nil {
		return nil, fmt.Errorf("%s: querying sessions: %w", s.dialect.Name, err)
	}
	defer rows.Close()

	sessions := []*storage.Session{}
	for rows.Next() {
		var (
			sess          storage.Session
			started, last int64
		)
		if err := rows.Scan(&sess.ID, &sess.Provider, &sess.Model, &sess.Records, &started, &last); err != nil {
			return nil, fmt.Errorf("%s: scanning session: %w", s.dialect.Name, err)
		}
		sess.StartedAt = time.Unix(0, started).UTC()
		sess.LastAt = time.Unix(0, last).UTC()
		sessions = append(sessions, &sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: reading sessions: %w", s.dialect.Name, err)
	}
	return sessions, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.DB == nil {
		return errors.New("store is not open")
	}
	return s.DB.Close()
}
