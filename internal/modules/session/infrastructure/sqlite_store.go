package infrastructure

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"infiniteLeafWeb/internal/modules/session/application/port"
	"infiniteLeafWeb/internal/modules/session/domain"
)

const sessionSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id               TEXT PRIMARY KEY,
	authenticated    INTEGER NOT NULL DEFAULT 0,
	token            TEXT NOT NULL DEFAULT '',
	username         TEXT NOT NULL DEFAULT '',
	token_expires_at INTEGER NOT NULL DEFAULT 0,
	created_at       INTEGER NOT NULL,
	last_seen        INTEGER NOT NULL,
	data_json        TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_sessions_last_seen ON sessions(last_seen);
`

// SQLiteStore persists sessions in a SQLite file so logins survive restarts.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating when needed) and migrates the session database.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("session store path is required")
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create session store dir: %w", err)
		}
	}

	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.runMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) runMigrations() error {
	_, err := s.db.Exec(sessionSchema)
	return err
}

// Close releases the underlying connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, authenticated, token, username, token_expires_at, created_at, last_seen, data_json
		 FROM sessions WHERE id = ?`, id)

	var (
		session       domain.Session
		authenticated int64
		tokenExpires  int64
		createdAt     int64
		lastSeen      int64
		dataJSON      string
	)
	err := row.Scan(&session.ID, &authenticated, &session.Token, &session.Username, &tokenExpires, &createdAt, &lastSeen, &dataJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}

	session.Authenticated = authenticated == 1
	session.TokenExpiresAt = fromMillis(tokenExpires)
	session.CreatedAt = fromMillis(createdAt)
	session.LastSeen = fromMillis(lastSeen)
	session.Data = make(map[string]json.RawMessage)
	if dataJSON != "" {
		if err := json.Unmarshal([]byte(dataJSON), &session.Data); err != nil {
			return nil, fmt.Errorf("decode session data: %w", err)
		}
	}
	return &session, nil
}

func (s *SQLiteStore) Save(ctx context.Context, session *domain.Session) error {
	data := session.Data
	if data == nil {
		data = map[string]json.RawMessage{}
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode session data: %w", err)
	}
	authenticated := 0
	if session.Authenticated {
		authenticated = 1
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, authenticated, token, username, token_expires_at, created_at, last_seen, data_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			authenticated = excluded.authenticated,
			token = excluded.token,
			username = excluded.username,
			token_expires_at = excluded.token_expires_at,
			last_seen = excluded.last_seen,
			data_json = excluded.data_json`,
		session.ID, authenticated, session.Token, session.Username,
		toMillis(session.TokenExpiresAt), toMillis(session.CreatedAt), toMillis(session.LastSeen), string(dataJSON),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteIdle(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE last_seen < ?`, toMillis(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete idle sessions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete idle sessions: %w", err)
	}
	return int(affected), nil
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

var _ port.Store = (*SQLiteStore)(nil)
