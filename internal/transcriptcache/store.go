// Package transcriptcache keeps provider transcription output keyed by the
// SHA-256 of the recording and the requested language, so re-scoring the same
// audio against another reference does not pay for a second transcription.
// It stores provider output only; evaluation results are never persisted.
package transcriptcache

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"pronounce/internal/transcript"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes. Older databases must
// be cleared.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by another version.
var ErrSchemaMismatch = errors.New("transcript cache schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Entry is one cached transcription.
type Entry struct {
	AudioSHA256 string
	Language    string
	Provider    string
	JobID       string
	Source      string
	AudioBytes  int64
	Utterances  []transcript.Utterance
	CreatedAt   time.Time
}

// Summary describes a cached transcription without its payload.
type Summary struct {
	AudioSHA256 string
	Language    string
	Provider    string
	JobID       string
	Source      string
	AudioBytes  int64
	Words       int
	CreatedAt   time.Time
}

// Store is the SQLite-backed cache.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open creates or opens the cache database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("transcript cache path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Lookup returns the cached transcription for a recording, or nil when none
// exists.
func (s *Store) Lookup(ctx context.Context, audioSHA256, language string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT audio_sha256, language, provider, job_id, source_name, audio_bytes, utterances_json, created_at
         FROM transcripts WHERE audio_sha256 = ? AND language = ?`,
		audioSHA256, normalizeLanguage(language),
	)
	var (
		entry    Entry
		jobID    sql.NullString
		source   sql.NullString
		payload  string
		unixNano int64
	)
	err := row.Scan(&entry.AudioSHA256, &entry.Language, &entry.Provider, &jobID, &source, &entry.AudioBytes, &payload, &unixNano)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup transcript: %w", err)
	}
	utterances, err := transcript.Decode(strings.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("decode cached transcript %s: %w", audioSHA256, err)
	}
	entry.JobID = jobID.String
	entry.Source = source.String
	entry.Utterances = utterances
	entry.CreatedAt = time.Unix(0, unixNano).UTC()
	return &entry, nil
}

// Put stores or replaces a cached transcription.
func (s *Store) Put(ctx context.Context, entry Entry) error {
	if strings.TrimSpace(entry.AudioSHA256) == "" {
		return errors.New("cache entry requires an audio hash")
	}
	if entry.Utterances == nil {
		return errors.New("cache entry requires utterances")
	}
	var payload bytes.Buffer
	if err := transcript.Encode(&payload, entry.Utterances); err != nil {
		return fmt.Errorf("encode utterances: %w", err)
	}
	words := 0
	for _, u := range entry.Utterances {
		words += len(u.Words)
	}
	created := entry.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	provider := entry.Provider
	if provider == "" {
		provider = "gladia"
	}
	return s.execWithRetry(ctx,
		`INSERT OR REPLACE INTO transcripts (
            audio_sha256, language, provider, job_id, source_name,
            audio_bytes, word_count, utterances_json, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.AudioSHA256,
		normalizeLanguage(entry.Language),
		provider,
		nullableString(entry.JobID),
		nullableString(entry.Source),
		entry.AudioBytes,
		words,
		payload.String(),
		created.UTC().UnixNano(),
	)
}

// List returns summaries ordered from newest to oldest.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT audio_sha256, language, provider, job_id, source_name, audio_bytes, word_count, created_at
         FROM transcripts ORDER BY created_at DESC, audio_sha256`)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			summary  Summary
			jobID    sql.NullString
			source   sql.NullString
			unixNano int64
		)
		if err := rows.Scan(&summary.AudioSHA256, &summary.Language, &summary.Provider, &jobID, &source, &summary.AudioBytes, &summary.Words, &unixNano); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		summary.JobID = jobID.String
		summary.Source = source.String
		summary.CreatedAt = time.Unix(0, unixNano).UTC()
		out = append(out, summary)
	}
	return out, rows.Err()
}

// Clear removes every entry and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	return s.deleteWhere(ctx, `DELETE FROM transcripts`)
}

// Prune removes entries created before cutoff.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.deleteWhere(ctx, `DELETE FROM transcripts WHERE created_at < ?`, cutoff.UTC().UnixNano())
}

func (s *Store) deleteWhere(ctx context.Context, query string, args ...any) (int64, error) {
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("delete transcripts: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func normalizeLanguage(language string) string {
	return strings.ToLower(strings.TrimSpace(language))
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
