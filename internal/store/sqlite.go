// internal/store/sqlite.go
//
// SQLite-backed SessionStore: one row per identity in the sessions table.
// Row replacement is atomic at the statement level, so readers never see a
// torn snapshot.

package store

import (
	"database/sql"
	"errors"
	"time"
)

type sqliteStore struct {
	db       *sql.DB
	identity string
}

// NewSQLiteStore returns a SessionStore persisting identity's snapshot into
// db's sessions table.
func NewSQLiteStore(db *sql.DB, identity string) SessionStore {
	return &sqliteStore{db: db, identity: identity}
}

func (s *sqliteStore) Read() ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM sessions WHERE identity=?`, s.identity).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	return data, err
}

func (s *sqliteStore) Write(data []byte) error {
	_, err := s.db.Exec(`INSERT INTO sessions (identity, data, updated_at) VALUES (?,?,?)
	                     ON CONFLICT(identity) DO UPDATE SET data=excluded.data, updated_at=excluded.updated_at`,
		s.identity, data, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *sqliteStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE identity=?`, s.identity)
	return err
}
