package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Entries cascade with their file record
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// A CLI search and a running MCP server may share one cache file
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTx) UpsertFile(ctx context.Context, file *File) error {
	return upsertFile(ctx, t.tx, file)
}

func (t *sqliteTx) DeleteEntriesByFile(ctx context.Context, fileID int64) error {
	return deleteEntriesByFile(ctx, t.tx, fileID)
}

func (t *sqliteTx) InsertEntry(ctx context.Context, entry *Entry) error {
	return insertEntry(ctx, t.tx, entry)
}

// File operations

func upsertFile(ctx context.Context, q querier, file *File) error {
	query := `
		INSERT INTO files (path, content_hash, mod_time, size_bytes, last_indexed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			content_hash = excluded.content_hash,
			mod_time = excluded.mod_time,
			size_bytes = excluded.size_bytes,
			last_indexed_at = excluded.last_indexed_at
		RETURNING id
	`
	now := time.Now()
	// SQLite integers are signed; the hash round-trips through int64
	err := q.QueryRowContext(ctx, query,
		file.Path, int64(file.ContentHash), file.ModTime.UnixNano(), file.SizeBytes, now.UnixNano(),
	).Scan(&file.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert file: %w", err)
	}

	file.LastIndexedAt = now
	return nil
}

func scanFile(row interface{ Scan(...any) error }) (*File, error) {
	var (
		file                 File
		hash                 int64
		modTime, lastIndexed int64
	)
	if err := row.Scan(&file.ID, &file.Path, &hash, &modTime, &file.SizeBytes, &lastIndexed); err != nil {
		return nil, err
	}
	file.ContentHash = uint64(hash)
	file.ModTime = time.Unix(0, modTime)
	file.LastIndexedAt = time.Unix(0, lastIndexed)
	return &file, nil
}

// GetFile returns the record for an absolute path, or ErrNotFound
func (s *SQLiteStorage) GetFile(ctx context.Context, path string) (*File, error) {
	query := `
		SELECT id, path, content_hash, mod_time, size_bytes, last_indexed_at
		FROM files
		WHERE path = ?
	`
	file, err := scanFile(s.db.QueryRowContext(ctx, query, path))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return file, nil
}

// TouchFile refreshes the modification time and size of a file whose
// content fingerprint did not change
func (s *SQLiteStorage) TouchFile(ctx context.Context, file *File) error {
	now := time.Now()
	result, err := s.db.ExecContext(ctx,
		`UPDATE files SET mod_time = ?, size_bytes = ?, last_indexed_at = ? WHERE id = ?`,
		file.ModTime.UnixNano(), file.SizeBytes, now.UnixNano(), file.ID)
	if err != nil {
		return fmt.Errorf("failed to touch file: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	file.LastIndexedAt = now
	return nil
}

// DeleteFile removes a file record and, through the foreign key, its entries
func (s *SQLiteStorage) DeleteFile(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, path)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// ListFiles returns all file records ordered by path
func (s *SQLiteStorage) ListFiles(ctx context.Context) ([]*File, error) {
	query := `
		SELECT id, path, content_hash, mod_time, size_bytes, last_indexed_at
		FROM files
		ORDER BY path
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	files := make([]*File, 0)
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

// Entry operations

func deleteEntriesByFile(ctx context.Context, q querier, fileID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM entries WHERE file_id = ?`, fileID)
	if err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	return nil
}

func insertEntry(ctx context.Context, q querier, entry *Entry) error {
	query := `
		INSERT INTO entries (file_id, ordinal, name, text, signature, line, col)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := q.ExecContext(ctx, query,
		entry.FileID, entry.Ordinal, entry.Name, entry.Text, entry.Signature, entry.Line, entry.Column)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	entry.ID = id
	return nil
}

// ListEntriesByFile returns a file's entries in their original order
func (s *SQLiteStorage) ListEntriesByFile(ctx context.Context, fileID int64) ([]*Entry, error) {
	query := `
		SELECT id, file_id, ordinal, name, text, signature, line, col
		FROM entries
		WHERE file_id = ?
		ORDER BY ordinal
	`
	rows, err := s.db.QueryContext(ctx, query, fileID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	entries := make([]*Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.FileID, &e.Ordinal, &e.Name, &e.Text, &e.Signature, &e.Line, &e.Column); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// ReplaceFile upserts the file record and replaces all of its entries
func (s *SQLiteStorage) ReplaceFile(ctx context.Context, file *File, entries []*Entry) error {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.UpsertFile(ctx, file); err != nil {
		return err
	}
	if err := tx.DeleteEntriesByFile(ctx, file.ID); err != nil {
		return err
	}
	for i, entry := range entries {
		entry.FileID = file.ID
		entry.Ordinal = i
		if err := tx.InsertEntry(ctx, entry); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Status operations

// GetStatus reports cache size and freshness
func (s *SQLiteStorage) GetStatus(ctx context.Context) (*Status, error) {
	status := &Status{BuildMode: BuildMode}

	version, err := currentVersion(ctx, s.db)
	if err != nil {
		return nil, err
	}
	status.SchemaVersion = version.String()

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&status.FilesCount); err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&status.EntriesCount); err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}

	var last sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(last_indexed_at) FROM files`).Scan(&last); err != nil {
		return nil, fmt.Errorf("failed to read last indexed time: %w", err)
	}
	if last.Valid {
		status.LastIndexedAt = time.Unix(0, last.Int64)
	}

	return status, nil
}
