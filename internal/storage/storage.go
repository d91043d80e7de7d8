package storage

import (
	"context"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/dshills/nixdoc/pkg/types"
)

// Storage defines the interface for the on-disk documentation cache
type Storage interface {
	// File operations
	GetFile(ctx context.Context, path string) (*File, error)
	TouchFile(ctx context.Context, file *File) error
	DeleteFile(ctx context.Context, path string) error
	ListFiles(ctx context.Context) ([]*File, error)

	// Entry operations
	ListEntriesByFile(ctx context.Context, fileID int64) ([]*Entry, error)

	// ReplaceFile stores a file record and swaps its entries for the given
	// ones in a single transaction
	ReplaceFile(ctx context.Context, file *File, entries []*Entry) error

	// Status operations
	GetStatus(ctx context.Context) (*Status, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error

	UpsertFile(ctx context.Context, file *File) error
	DeleteEntriesByFile(ctx context.Context, fileID int64) error
	InsertEntry(ctx context.Context, entry *Entry) error
}

// File represents a scanned source file and the fingerprint its entries were
// computed from
type File struct {
	ID            int64
	Path          string // Absolute, cleaned
	ContentHash   uint64 // xxhash of the content
	ModTime       time.Time
	SizeBytes     int64
	LastIndexedAt time.Time
}

// Entry represents a cached documentation entry
type Entry struct {
	ID        int64
	FileID    int64
	Ordinal   int // Position within the file's entries
	Name      string
	Text      string
	Signature string
	Line      int
	Column    int
}

// Status contains statistics about the cache
type Status struct {
	SchemaVersion string
	BuildMode     string
	FilesCount    int
	EntriesCount  int
	LastIndexedAt time.Time
}

// Fingerprint returns the content hash stored with a file record
func Fingerprint(content []byte) uint64 {
	return xxhash.Sum64(content)
}

// Fresh reports whether the stored record still describes a file with the
// given modification time and size
func (f *File) Fresh(modTime time.Time, size int64) bool {
	return f.ModTime.Equal(modTime) && f.SizeBytes == size
}

// ToDocEntry converts a cached entry back to a types.DocEntry for file
func (e *Entry) ToDocEntry(file string) types.DocEntry {
	return types.DocEntry{
		Name:      e.Name,
		Text:      e.Text,
		Signature: e.Signature,
		Position: types.Position{
			File:   file,
			Line:   e.Line,
			Column: e.Column,
		},
	}
}

// FromDocEntry converts a types.DocEntry to a cache entry
func FromDocEntry(d types.DocEntry, fileID int64, ordinal int) *Entry {
	return &Entry{
		FileID:    fileID,
		Ordinal:   ordinal,
		Name:      d.Name,
		Text:      d.Text,
		Signature: d.Signature,
		Line:      d.Position.Line,
		Column:    d.Position.Column,
	}
}
