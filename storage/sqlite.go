package storage

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/masoi-online/server/consts"
)

const schema = `
CREATE TABLE IF NOT EXISTS match_snapshot (
	guild_id   TEXT NOT NULL,
	channel_id TEXT NOT NULL,
	data       BLOB NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (guild_id, channel_id)
);`

// Sqlite persists snapshots to a local database file so matches survive a
// process restart.
type Sqlite struct {
	db *sqlx.DB
}

func NewSqlite(path string) (*Sqlite, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Sqlite{db: db}, nil
}

func (s *Sqlite) Put(guildID, channelID string, data []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO match_snapshot (guild_id, channel_id, data, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (guild_id, channel_id)
		DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		guildID, channelID, data)
	return err
}

func (s *Sqlite) Get(guildID, channelID string) ([]byte, error) {
	var data []byte
	err := s.db.Get(&data, "SELECT data FROM match_snapshot WHERE guild_id = ? AND channel_id = ?", guildID, channelID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, consts.ErrorsSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Sqlite) Del(guildID, channelID string) error {
	_, err := s.db.Exec("DELETE FROM match_snapshot WHERE guild_id = ? AND channel_id = ?", guildID, channelID)
	return err
}

func (s *Sqlite) Close() error {
	return s.db.Close()
}
