package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// createdAtLayout is fixed width so created_at sorts as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteStore struct {
	db *sql.DB
}

var ErrRenderNotFound = errors.New("render not found")

// RenderRecord is one chart produced by the plot, menu or serve commands.
type RenderRecord struct {
	ID         int64
	SourceFile string
	Kind       string
	Title      string
	Columns    []string
	Rows       int
	// Target is the written image path, "terminal" or "web".
	Target     string
	CreatedAt  time.Time
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS renders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_file TEXT NOT NULL,
	kind TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	columns TEXT NOT NULL DEFAULT '[]',
	row_count INTEGER NOT NULL DEFAULT 0 CHECK(row_count >= 0),
	target TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_renders_created_at ON renders(created_at);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// InsertRender stores one record and returns its ID. A zero CreatedAt is
// replaced with the current time.
func (s *SQLiteStore) InsertRender(record RenderRecord) (int64, error) {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	columns := record.Columns
	if columns == nil {
		columns = []string{}
	}
	encoded, err := json.Marshal(columns)
	if err != nil {
		return 0, fmt.Errorf("encode render columns: %w", err)
	}

	const insertStmt = `
INSERT INTO renders (
	source_file,
	kind,
	title,
	columns,
	row_count,
	target,
	created_at
) VALUES (?, ?, ?, ?, ?, ?, ?);`

	res, err := s.db.Exec(
		insertStmt,
		record.SourceFile,
		record.Kind,
		record.Title,
		string(encoded),
		record.Rows,
		record.Target,
		record.CreatedAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("insert render: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted render id: %w", err)
	}
	return id, nil
}

// ListRenders returns the most recently inserted records first. limit <= 0
// returns all.
func (s *SQLiteStore) ListRenders(limit int) ([]RenderRecord, error) {
	query := `
SELECT
	id,
	source_file,
	kind,
	title,
	columns,
	row_count,
	target,
	created_at
FROM renders
ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += `
LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query+";", args...)
	if err != nil {
		return nil, fmt.Errorf("query renders: %w", err)
	}
	defer rows.Close()

	records := make([]RenderRecord, 0, 32)
	for rows.Next() {
		record, err := scanRender(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate renders: %w", err)
	}

	return records, nil
}

// GetRender returns one record by ID.
func (s *SQLiteStore) GetRender(id int64) (RenderRecord, error) {
	if id <= 0 {
		return RenderRecord{}, fmt.Errorf("render id must be > 0")
	}

	const query = `
SELECT
	id,
	source_file,
	kind,
	title,
	columns,
	row_count,
	target,
	created_at
FROM renders
WHERE id = ?;
`
	record, err := scanRender(s.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return RenderRecord{}, ErrRenderNotFound
	}
	return record, err
}

func (s *SQLiteStore) ClearRenders() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM renders;`)
	if err != nil {
		return 0, fmt.Errorf("delete renders: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read deleted rows: %w", err)
	}
	return affected, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRender(row rowScanner) (RenderRecord, error) {
	var (
		record     RenderRecord
		columnsRaw string
		createdRaw string
	)
	if err := row.Scan(
		&record.ID,
		&record.SourceFile,
		&record.Kind,
		&record.Title,
		&columnsRaw,
		&record.Rows,
		&record.Target,
		&createdRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return record, err
		}
		return record, fmt.Errorf("scan render: %w", err)
	}

	if err := json.Unmarshal([]byte(columnsRaw), &record.Columns); err != nil {
		return record, fmt.Errorf("decode render columns %q: %w", columnsRaw, err)
	}
	created, err := time.Parse(time.RFC3339Nano, createdRaw)
	if err != nil {
		return record, fmt.Errorf("parse created_at %q: %w", createdRaw, err)
	}
	record.CreatedAt = created
	return record, nil
}
