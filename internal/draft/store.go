// Package draft persists the in-progress wizard state to a local SQLite
// file. The store is deliberately forgiving: saves are best-effort and never
// surface an error to the wizard, and any read or decode failure degrades to
// "no draft available".
package draft

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/hospitalops/cftflow/internal/domain/wizard"
)

const draftKey = "sgt-cft-rascunho"

type Store struct {
	db  *sql.DB
	log *zap.Logger
}

func Open(path string, log *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening draft store: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS drafts (
    key        TEXT PRIMARY KEY,
    payload    BLOB NOT NULL,
    updated_at TIMESTAMP NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating draft schema: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes the draft snapshot. Failures are swallowed at this boundary
// and only logged: losing a draft must never break the submission flow.
func (s *Store) Save(state *wizard.State) {
	payload, err := json.Marshal(state)
	if err != nil {
		s.log.Warn("draft not saved", zap.Error(err))
		return
	}

	_, err = s.db.Exec(
		`INSERT INTO drafts (key, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		draftKey, payload, time.Now().UTC(),
	)
	if err != nil {
		s.log.Warn("draft not saved", zap.Error(err))
	}
}

// Load returns the saved draft, or nil when there is none. Storage and
// decode failures are treated the same as an absent draft.
func (s *Store) Load() *wizard.State {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM drafts WHERE key = ?`, draftKey).Scan(&payload)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Warn("draft not loaded", zap.Error(err))
		}
		return nil
	}

	var state wizard.State
	if err := json.Unmarshal(payload, &state); err != nil {
		s.log.Warn("draft payload undecodable, discarding", zap.Error(err))
		return nil
	}
	return &state
}

// Clear removes the draft. Called after a successful submission.
func (s *Store) Clear() {
	if _, err := s.db.Exec(`DELETE FROM drafts WHERE key = ?`, draftKey); err != nil {
		s.log.Warn("draft not cleared", zap.Error(err))
	}
}
