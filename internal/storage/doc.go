// Package storage provides the optional SQLite cache of documentation entries.
//
// The cache is off unless explicitly enabled. It stores exactly what a fresh
// scan of a file produces, keyed by the file's absolute path, and is
// validated against the file's modification time, size and an xxhash
// fingerprint of its content. A search served from the cache is therefore
// indistinguishable from one that rescans every file.
//
// # Database Schema
//
// Tables:
//   - files: absolute path, content fingerprint, mod time, size
//   - entries: name, documentation text, signature and position per entry,
//     ordered by ordinal within a file
//   - schema_version: applied migrations (semver)
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("/home/me/.cache/nixdoc/cache.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	file, err := db.GetFile(ctx, "/src/nixpkgs/lib/trivial.nix")
//	if errors.Is(err, storage.ErrNotFound) {
//	    // Scan the file, then store the result
//	}
//
// # Freshness
//
// A record is reused as is when mod time and size match. When only those
// changed, the content fingerprint decides:
//
//	if file.Fresh(info.ModTime(), info.Size()) {
//	    entries, _ := db.ListEntriesByFile(ctx, file.ID)
//	    // cache hit
//	}
//
//	if file.ContentHash == storage.Fingerprint(content) {
//	    file.ModTime, file.SizeBytes = info.ModTime(), info.Size()
//	    _ = db.TouchFile(ctx, file)
//	}
//
// # Transactions
//
// ReplaceFile swaps a file's entries atomically. Lower level access is
// available through BeginTx:
//
//	tx, err := db.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	if err := tx.UpsertFile(ctx, file); err != nil {
//	    return err
//	}
//	return tx.Commit()
//
// # Build Modes
//
// The default build uses modernc.org/sqlite (pure Go). Building with the
// sqlite_cgo tag switches to github.com/mattn/go-sqlite3. BuildMode reports
// which one is linked.
package storage
