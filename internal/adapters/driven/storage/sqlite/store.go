package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CollectionStore = (*Store)(nil)

// dbFile is the database file name inside the data directory.
const dbFile = "index.db"

// Store is a SQLite-based collection store.
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

	dbPath := filepath.Join(dataDir, dbFile)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
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

// migrate runs all pending migrations.
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
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
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
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Replace discards the collection's chunks and stores chunks in one transaction.
func (s *Store) Replace(ctx context.Context, info domain.CollectionInfo, chunks []domain.Chunk) error {
	if err := info.ValidateChunks(chunks); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE collection = ?`, info.Name); err != nil {
		return fmt.Errorf("clearing collection: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO collections (name, embedding_model, dimensions, chunk_count, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			embedding_model = excluded.embedding_model,
			dimensions = excluded.dimensions,
			chunk_count = excluded.chunk_count,
			created_at = excluded.created_at
	`, info.Name, info.EmbeddingModel, info.Dimensions, len(chunks), info.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving collection: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (collection, id, seq, source, file_path, total_pages,
			char_offset, content, page_reference, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx, info.Name, c.ID, c.Index, c.Source, c.FilePath,
			c.TotalPages, c.Offset, c.Content, c.PageReference, float32SliceToBytes(c.Embedding)); err != nil {
			return fmt.Errorf("saving chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Search scans the collection's rows passing filter and returns the k closest.
func (s *Store) Search(
	ctx context.Context, name string, vector []float32, k int, filter *domain.Filter,
) ([]domain.RetrievedChunk, error) {
	if filter != nil && len(filter.Sources) == 0 {
		return []domain.RetrievedChunk{}, nil
	}

	query := chunkColumns + ` WHERE collection = ?`
	args := []any{name}
	if filter != nil {
		query += ` AND source IN (?` + strings.Repeat(", ?", len(filter.Sources)-1) + `)`
		for _, src := range filter.Sources {
			args = append(args, src)
		}
	}

	chunks, err := s.queryChunks(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	results := make([]domain.RetrievedChunk, 0, len(chunks))
	for _, c := range chunks {
		results = append(results, domain.RetrievedChunk{
			Chunk:    c,
			Distance: domain.CosineDistance(vector, c.Embedding),
		})
	}
	return domain.TopK(results, k), nil
}

// Info describes a collection.
func (s *Store) Info(ctx context.Context, name string) (*domain.CollectionInfo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT name, embedding_model, dimensions, chunk_count, created_at
		FROM collections WHERE name = ?
	`, name)

	var info domain.CollectionInfo
	if err := row.Scan(&info.Name, &info.EmbeddingModel, &info.Dimensions,
		&info.Chunks, &info.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning collection: %w", err)
	}
	return &info, nil
}

// Chunks returns every chunk of the collection ordered by Index.
func (s *Store) Chunks(ctx context.Context, name string) ([]domain.Chunk, error) {
	if _, err := s.Info(ctx, name); err != nil {
		return nil, err
	}
	return s.queryChunks(ctx, chunkColumns+` WHERE collection = ? ORDER BY seq`, name)
}

const chunkColumns = `
	SELECT id, seq, source, file_path, total_pages, char_offset, content, page_reference, embedding
	FROM chunks`

func (s *Store) queryChunks(ctx context.Context, query string, args ...any) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// scanChunk scans a chunk from *sql.Rows.
func scanChunk(rows *sql.Rows) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embeddingBlob []byte

	if err := rows.Scan(&chunk.ID, &chunk.Index, &chunk.Source, &chunk.FilePath,
		&chunk.TotalPages, &chunk.Offset, &chunk.Content, &chunk.PageReference,
		&embeddingBlob); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
	return &chunk, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
