package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// DatabaseFile is the database file name inside the data directory.
const DatabaseFile = "docqa.db"

// Store is a SQLite-backed store for ingestion records.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.docqa/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docqa", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// WAL lets the HTTP handlers read while a background ingestion writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// IngestionStore returns an IngestionStore backed by this store.
func (s *Store) IngestionStore() driven.IngestionStore {
	return &ingestionStore{store: s}
}

// migrate runs all pending migrations in version order.
// Each migration records its own version in schema_migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Ingestion Store ====================

// ingestionStore implements driven.IngestionStore.
type ingestionStore struct {
	store *Store
}

var _ driven.IngestionStore = (*ingestionStore)(nil)

const ingestionColumns = `id, file_name, file_size, file_type, stored_path, status, error,
	language, language_confidence, chunk_count, text_length, preview, created_at, processed_at`

// Save stores or updates a record.
func (s *ingestionStore) Save(ctx context.Context, rec *domain.IngestionRecord) error {
	var processedAt sql.NullTime
	if !rec.ProcessedAt.IsZero() {
		processedAt = sql.NullTime{Time: rec.ProcessedAt, Valid: true}
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO ingestions (`+ingestionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			file_name = excluded.file_name,
			file_size = excluded.file_size,
			file_type = excluded.file_type,
			stored_path = excluded.stored_path,
			status = excluded.status,
			error = excluded.error,
			language = excluded.language,
			language_confidence = excluded.language_confidence,
			chunk_count = excluded.chunk_count,
			text_length = excluded.text_length,
			preview = excluded.preview,
			processed_at = excluded.processed_at
	`, rec.ID, rec.FileName, rec.FileSize, string(rec.FileType), rec.StoredPath, string(rec.Status),
		rec.Error, string(rec.Language), rec.LanguageConfidence, rec.ChunkCount, rec.TextLength,
		rec.Preview, rec.CreatedAt, processedAt)
	if err != nil {
		return fmt.Errorf("saving ingestion record: %w", err)
	}
	return nil
}

// Get retrieves a record by document ID.
func (s *ingestionStore) Get(ctx context.Context, id string) (*domain.IngestionRecord, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+ingestionColumns+` FROM ingestions WHERE id = ?`, id)
	return scanIngestion(row)
}

// GetByPath retrieves the newest record for a stored path.
func (s *ingestionStore) GetByPath(ctx context.Context, path string) (*domain.IngestionRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+ingestionColumns+` FROM ingestions
		WHERE stored_path = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, path)
	return scanIngestion(row)
}

// List returns all records, oldest first.
func (s *ingestionStore) List(ctx context.Context) ([]domain.IngestionRecord, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+ingestionColumns+` FROM ingestions ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying ingestion records: %w", err)
	}
	defer rows.Close()

	var records []domain.IngestionRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanIngestion(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ingestion records: %w", err)
	}
	return records, nil
}

// Delete removes a record.
func (s *ingestionStore) Delete(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM ingestions WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting ingestion record: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanIngestion(row scanner) (*domain.IngestionRecord, error) {
	var (
		rec                        domain.IngestionRecord
		fileType, status, language string
		processedAt                sql.NullTime
	)

	if err := row.Scan(&rec.ID, &rec.FileName, &rec.FileSize, &fileType, &rec.StoredPath,
		&status, &rec.Error, &language, &rec.LanguageConfidence, &rec.ChunkCount,
		&rec.TextLength, &rec.Preview, &rec.CreatedAt, &processedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning ingestion record: %w", err)
	}

	rec.FileType = domain.FileType(fileType)
	rec.Status = domain.IngestionStatus(status)
	rec.Language = domain.Language(language)
	rec.CreatedAt = toUTC(rec.CreatedAt)
	if processedAt.Valid {
		rec.ProcessedAt = toUTC(processedAt.Time)
	}
	return &rec, nil
}

// toUTC normalises timestamps read back from SQLite.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
