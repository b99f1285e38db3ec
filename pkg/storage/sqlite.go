package storage

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"

	"github.com/askupi/insights/pkg/common"
)

// SQLite keeps records in a single key-value table, mirroring the wholesale
// read/rewrite semantics of the file backend.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS records (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	if err != nil {
		return nil, err
	}

	return &SQLite{
		db: db,
	}, nil
}

func (s *SQLite) Read(
	ctx context.Context,
	key string,
) ([]byte, error) {
	var value []byte

	err := s.db.QueryRowContext(ctx, "SELECT value FROM records WHERE key = ?", key).
		Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, errors.Wrapf(common.ErrStorageUnavailable, "read %s: %v", key, err)
	}

	return value, nil
}

func (s *SQLite) Write(
	ctx context.Context,
	key string,
	value []byte,
) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO records (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	if err != nil {
		return errors.Wrapf(common.ErrStorageUnavailable, "write %s: %v", key, err)
	}

	return nil
}

func (s *SQLite) Usage(
	ctx context.Context,
) (Info, error) {
	var used int64

	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(LENGTH(key) + LENGTH(value)), 0) FROM records").
		Scan(&used)
	if err != nil {
		return Info{}, errors.Wrapf(common.ErrStorageUnavailable, "usage: %v", err)
	}

	return usageInfo(used), nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
