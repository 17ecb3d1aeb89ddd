// Package history provides SQLite-based persistence for recommendation outcomes.
// The database is opened lazily and created on first use.
// If opening the DB or executing queries fails, the store falls back to in-memory records.
package history

import (
	"context"
	"database/sql"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"

	"github.com/comigor/emotune/internal/logger"
)

// Store records outcomes in SQLite with an in-memory fallback.
type Store struct {
	path string

	mu      sync.Mutex
	records []Record // in-memory fallback

	dbOnce  sync.Once
	db      *sql.DB
	initErr error
}

// New returns a Store backed by the SQLite file at path. Nothing is opened
// until the first Save or query.
func New(path string) *Store {
	return &Store{path: path}
}

// initDB opens the SQLite database and creates the recommendations table if it doesn't exist.
func (s *Store) initDB() {
	var err error
	s.db, err = sql.Open("sqlite", "file:"+s.path+"?_pragma=busy_timeout(10000)")
	if err != nil {
		s.initErr = err
		logger.L.Warn("sqlite open failed; using in-memory history", "error", err)
		return
	}
	if _, err = s.db.Exec(`CREATE TABLE IF NOT EXISTS recommendations (
        id TEXT PRIMARY KEY,
        session_id TEXT NOT NULL,
        user_name TEXT,
        emotion TEXT,
        classified INTEGER NOT NULL,
        matches INTEGER NOT NULL,
        created_at INTEGER NOT NULL
    );`); err != nil {
		s.initErr = err
		logger.L.Warn("sqlite table creation failed; using in-memory history", "error", err)
		return
	}
	logger.L.Info("sqlite history DB initialized", "path", s.path)
}

func (s *Store) usable() bool {
	s.dbOnce.Do(s.initDB)
	return s.initErr == nil && s.db != nil
}

// Save persists r. Missing ID and CreatedAt are filled in. Failures are logged,
// never returned: losing a history row must not break a session.
func (s *Store) Save(ctx context.Context, r Record) Record {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	if s.usable() {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO recommendations (id, session_id, user_name, emotion, classified, matches, created_at) VALUES (?,?,?,?,?,?,?);`,
			r.ID, r.SessionID, r.UserName, r.Emotion, r.Classified, r.Matches, r.CreatedAt.UnixMilli())
		if err == nil {
			return r
		}
		logger.L.Error("failed to store recommendation in sqlite; falling back to memory", "error", err)
	}

	s.mu.Lock()
	s.records = append(s.records, r)
	s.mu.Unlock()
	return r
}

// ListSession returns the records of one session, oldest first.
func (s *Store) ListSession(ctx context.Context, sessionID string) []Record {
	out, ok := s.query(ctx, `SELECT id, session_id, user_name, emotion, classified, matches, created_at
        FROM recommendations WHERE session_id = ? ORDER BY created_at ASC, rowid ASC;`, sessionID)
	if !ok {
		out = []Record{}
		s.mu.Lock()
		for _, r := range s.records {
			if r.SessionID == sessionID {
				out = append(out, r)
			}
		}
		s.mu.Unlock()
	}
	return out
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) []Record {
	if limit <= 0 {
		limit = 20
	}
	out, ok := s.query(ctx, `SELECT id, session_id, user_name, emotion, classified, matches, created_at
        FROM recommendations ORDER BY created_at DESC, rowid DESC LIMIT ?;`, limit)
	if !ok {
		out = []Record{}
		s.mu.Lock()
		for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
			out = append(out, s.records[i])
		}
		s.mu.Unlock()
	}
	return out
}

// Close releases the database handle if one was opened.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Record, bool) {
	if !s.usable() {
		return nil, false
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		logger.L.Error("history query failed", "error", err)
		return nil, false
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var (
			r        Record
			userName sql.NullString
			emo      sql.NullString
			created  int64
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &userName, &emo, &r.Classified, &r.Matches, &created); err != nil {
			logger.L.Warn("skipping unreadable history row", "error", err)
			continue
		}
		r.UserName = userName.String
		r.Emotion = emo.String
		r.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, r)
	}
	return out, true
}
