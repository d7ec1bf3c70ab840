package storage

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database with methods for documents and chunk metadata.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending migrations.
// Pass ":memory:" as dataDir for an in-memory database (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "voicerag.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// DB exposes the underlying database handle. The vector index shares the same
// SQLite file but is managed through its own adapter.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (s *Store) migrate() error {
	// Ensure schema_version table exists (bootstrap).
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		// Check if already applied.
		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// --- Documents ---

// InsertDocument inserts a document and returns its store-assigned id.
// Returns ErrDuplicateHash when another document with the same file_hash
// already exists; this is how a concurrent duplicate ingestion loses the race.
func (s *Store) InsertDocument(doc Document) (int64, error) {
	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	res, err := s.db.Exec(`
		INSERT INTO documents (title, file_path, file_hash, created_at)
		VALUES (?, ?, ?, ?)`,
		doc.Title, doc.FilePath, doc.FileHash, createdAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateHash
		}
		return 0, err
	}
	return res.LastInsertId()
}

// isUniqueViolation reports whether err is a SQLite unique constraint failure.
// modernc.org/sqlite surfaces these as plain errors carrying the constraint text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetDocument returns the document with the given id.
func (s *Store) GetDocument(id int64) (Document, error) {
	return s.scanDocument(s.db.QueryRow(`
		SELECT id, title, file_path, file_hash, created_at
		FROM documents WHERE id = ?`, id))
}

// GetDocumentByHash returns the document with the given content hash.
func (s *Store) GetDocumentByHash(hash string) (Document, error) {
	return s.scanDocument(s.db.QueryRow(`
		SELECT id, title, file_path, file_hash, created_at
		FROM documents WHERE file_hash = ?`, hash))
}

func (s *Store) scanDocument(row *sql.Row) (Document, error) {
	var d Document
	var createdAt string
	err := row.Scan(&d.ID, &d.Title, &d.FilePath, &d.FileHash, &createdAt)
	if err == sql.ErrNoRows {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, err
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Document{}, fmt.Errorf("parsing created_at: %w", err)
	}
	d.CreatedAt = t
	return d, nil
}

// ListDocuments returns all documents with their chunk counts, newest first.
func (s *Store) ListDocuments() ([]DocumentInfo, error) {
	rows, err := s.db.Query(`
		SELECT d.id, d.title, d.file_path, d.file_hash, d.created_at, COUNT(c.id)
		FROM documents d
		LEFT JOIN chunks c ON c.document_id = d.id
		GROUP BY d.id
		ORDER BY d.created_at DESC, d.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []DocumentInfo
	for rows.Next() {
		var info DocumentInfo
		var createdAt string
		if err := rows.Scan(&info.ID, &info.Title, &info.FilePath, &info.FileHash, &createdAt, &info.ChunkCount); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		info.CreatedAt = t
		results = append(results, info)
	}
	return results, rows.Err()
}

// --- Chunks ---

// InsertChunks inserts chunk metadata rows in a single transaction.
func (s *Store) InsertChunks(chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning chunk insert transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO chunks (document_id, chunk_index, metadata_json)
		VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing chunk insert statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		meta, err := json.Marshal(c.Metadata)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("marshalling metadata for chunk %d: %w", c.ChunkIndex, err)
		}
		if _, err := stmt.Exec(c.DocumentID, c.ChunkIndex, string(meta)); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting chunk %d: %w", c.ChunkIndex, err)
		}
	}

	return tx.Commit()
}

// ListChunks returns chunk metadata rows for a document ordered by chunk_index.
func (s *Store) ListChunks(documentID int64) ([]Chunk, error) {
	rows, err := s.db.Query(`
		SELECT id, document_id, chunk_index, metadata_json
		FROM chunks WHERE document_id = ? ORDER BY chunk_index ASC`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var c Chunk
		var meta string
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.ChunkIndex, &meta); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(meta), &c.Metadata); err != nil {
			return nil, fmt.Errorf("parsing metadata for chunk %d: %w", c.ID, err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// CountChunks returns the number of chunk rows for a document.
func (s *Store) CountChunks(documentID int64) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM chunks WHERE document_id = ?", documentID).Scan(&count)
	return count, err
}

// DeleteDocument removes a document and all its chunk rows in one transaction,
// returning the number of chunks deleted. Returns ErrNotFound (with no side
// effects) when the document does not exist.
func (s *Store) DeleteDocument(id int64) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning delete transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow("SELECT COUNT(*) FROM documents WHERE id = ?", id).Scan(&exists); err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, ErrNotFound
	}

	res, err := tx.Exec("DELETE FROM chunks WHERE document_id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("deleting chunks: %w", err)
	}
	chunksDeleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec("DELETE FROM documents WHERE id = ?", id); err != nil {
		return 0, fmt.Errorf("deleting document: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing delete: %w", err)
	}
	return int(chunksDeleted), nil
}
