package storage

import (
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/ledgrio/ledgrio-go/session"
)

var _ session.Repo = (*SQLiteRepo)(nil)

const sessionSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	payload    TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// SQLiteRepo persists the session in a single-row sqlite table. Useful when
// the embedding application already keeps local state in sqlite.
type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(dsn string) (*SQLiteRepo, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "[NewSQLiteRepo] open database")
	}
	if _, err := db.Exec(sessionSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "[NewSQLiteRepo] create sessions table")
	}
	return &SQLiteRepo{db: db}, nil
}

func (r *SQLiteRepo) Close() error { return r.db.Close() }

func (r *SQLiteRepo) Load() (*session.Session, error) {
	var payload string
	err := r.db.QueryRow(`SELECT payload FROM sessions WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[SQLiteRepo.Load] query session")
	}

	var sess session.Session
	if err := json.Unmarshal([]byte(payload), &sess); err != nil {
		return nil, errors.Wrap(err, "[SQLiteRepo.Load] decode session")
	}
	return &sess, nil
}

func (r *SQLiteRepo) Save(sess *session.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, "[SQLiteRepo.Save] encode session")
	}
	_, err = r.db.Exec(`
		INSERT INTO sessions (id, payload, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`,
		string(payload))
	return errors.Wrap(err, "[SQLiteRepo.Save] upsert session")
}

func (r *SQLiteRepo) Clear() error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE id = 1`)
	return errors.Wrap(err, "[SQLiteRepo.Clear] delete session")
}
