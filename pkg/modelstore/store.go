// Package modelstore persists named seqtag model snapshots in a SQL
// database, so several trained models can live side by side and be loaded
// back by name.
package modelstore

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/CTAG07/Drosera/pkg/seqtag"
)

// ErrNotFound is returned when no snapshot exists under the requested name.
var ErrNotFound = errors.New("model not found")

// SetupSchema initializes the snapshot table in the provided database. It
// is idempotent and safe to call on an already-initialized database.
func SetupSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS seqtag_models (
    snapshot_id TEXT NOT NULL,
    model_name  TEXT PRIMARY KEY,
    model_type  TEXT NOT NULL,
    created_at  INTEGER NOT NULL,
    snapshot    BLOB NOT NULL
);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("could not create schema: %w", err)
	}
	return nil
}

// ModelInfo describes one stored snapshot.
type ModelInfo struct {
	SnapshotID string
	Name       string
	Type       string
	CreatedAt  time.Time
}

// Store reads and writes model snapshots. It holds prepared SQL statements
// for the hot paths and should be closed when no longer needed.
type Store struct {
	db         *sql.DB
	stmtGet    *sql.Stmt
	stmtPut    *sql.Stmt
	stmtList   *sql.Stmt
	stmtDelete *sql.Stmt
	logger     *slog.Logger
}

// New creates a Store on an initialized database, pre-compiling all
// statements it needs.
func New(db *sql.DB) (*Store, error) {
	stmtGet, err := db.Prepare(`SELECT snapshot FROM seqtag_models WHERE model_name = ?;`)
	if err != nil {
		return nil, err
	}

	stmtPut, err := db.Prepare(`
INSERT INTO seqtag_models (snapshot_id, model_name, model_type, created_at, snapshot) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(model_name) DO UPDATE SET
    snapshot_id = excluded.snapshot_id,
    model_type  = excluded.model_type,
    created_at  = excluded.created_at,
    snapshot    = excluded.snapshot;
`)
	if err != nil {
		return nil, err
	}

	stmtList, err := db.Prepare(`SELECT snapshot_id, model_name, model_type, created_at FROM seqtag_models ORDER BY model_name;`)
	if err != nil {
		return nil, err
	}

	stmtDelete, err := db.Prepare(`DELETE FROM seqtag_models WHERE model_name = ?;`)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:         db,
		stmtGet:    stmtGet,
		stmtPut:    stmtPut,
		stmtList:   stmtList,
		stmtDelete: stmtDelete,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// SetLogger sets the logger for the Store. By default, all logs are
// discarded.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Close releases the prepared statements held by the Store.
func (s *Store) Close() {
	_ = s.stmtGet.Close()
	_ = s.stmtPut.Close()
	_ = s.stmtList.Close()
	_ = s.stmtDelete.Close()
}

// Save serializes m and stores it under name, replacing any previous
// snapshot with that name. Every save gets a fresh ULID snapshot id.
func (s *Store) Save(ctx context.Context, name string, m *seqtag.Model) error {
	var buf bytes.Buffer
	if err := m.Save(&buf); err != nil {
		return fmt.Errorf("could not serialize model %q: %w", name, err)
	}

	id := ulid.Make().String()
	now := time.Now().UnixMilli()
	if _, err := s.stmtPut.ExecContext(ctx, id, name, m.Type().String(), now, buf.Bytes()); err != nil {
		return fmt.Errorf("could not store model %q: %w", name, err)
	}

	s.logger.InfoContext(ctx, "Model stored",
		slog.String("model_name", name),
		slog.String("snapshot_id", id),
		slog.String("model_type", m.Type().String()),
		slog.Int("snapshot_bytes", buf.Len()),
	)
	return nil
}

// Load reconstructs the model stored under name using cfg and opts for
// construction. It returns ErrNotFound when the name is unknown.
func (s *Store) Load(ctx context.Context, name string, cfg *seqtag.Config, opts ...seqtag.Option) (*seqtag.Model, error) {
	var blob []byte
	err := s.stmtGet.QueryRowContext(ctx, name).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read model %q: %w", name, err)
	}

	m, err := seqtag.LoadReader(bytes.NewReader(blob), cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not restore model %q: %w", name, err)
	}
	return m, nil
}

// List returns metadata for all stored snapshots, ordered by name.
func (s *Store) List(ctx context.Context) ([]ModelInfo, error) {
	rows, err := s.stmtList.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var infos []ModelInfo
	for rows.Next() {
		var info ModelInfo
		var createdAt int64
		if err = rows.Scan(&info.SnapshotID, &info.Name, &info.Type, &createdAt); err != nil {
			return nil, err
		}
		info.CreatedAt = time.UnixMilli(createdAt)
		infos = append(infos, info)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return infos, nil
}

// Delete removes the snapshot stored under name. It returns ErrNotFound
// when the name is unknown.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.stmtDelete.ExecContext(ctx, name)
	if err != nil {
		return fmt.Errorf("could not delete model %q: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}

	s.logger.InfoContext(ctx, "Model removed", slog.String("model_name", name))
	return nil
}
