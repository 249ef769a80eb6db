package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/akolanti/readstash/internal/config"
	"github.com/akolanti/readstash/pkg/logger_i"
)

// SQLiteDocumentStore holds the authoritative document rows, the tag
// tables, and the FTS5 lexical index kept in sync by triggers.
type SQLiteDocumentStore struct {
	db     *sql.DB
	logger *logger_i.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	canonical_url TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	author TEXT,
	published_date TEXT,
	source_type TEXT NOT NULL DEFAULT 'web_article',
	content TEXT NOT NULL,
	summary TEXT NOT NULL DEFAULT '',
	summary_status TEXT NOT NULL DEFAULT 'pending',
	embedding_status TEXT NOT NULL DEFAULT 'pending',
	read_status INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT UNIQUE NOT NULL
);

CREATE TABLE IF NOT EXISTS document_tags (
	document_id TEXT NOT NULL,
	tag_id INTEGER NOT NULL,
	PRIMARY KEY (document_id, tag_id),
	FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE,
	FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE
);

CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
	title, content, summary,
	content='documents',
	content_rowid='rowid'
);

CREATE TRIGGER IF NOT EXISTS documents_ai AFTER INSERT ON documents BEGIN
	INSERT INTO documents_fts(rowid, title, content, summary)
	VALUES (NEW.rowid, NEW.title, NEW.content, NEW.summary);
END;

CREATE TRIGGER IF NOT EXISTS documents_ad AFTER DELETE ON documents BEGIN
	INSERT INTO documents_fts(documents_fts, rowid, title, content, summary)
	VALUES ('delete', OLD.rowid, OLD.title, OLD.content, OLD.summary);
END;

CREATE TRIGGER IF NOT EXISTS documents_au AFTER UPDATE ON documents BEGIN
	INSERT INTO documents_fts(documents_fts, rowid, title, content, summary)
	VALUES ('delete', OLD.rowid, OLD.title, OLD.content, OLD.summary);
	INSERT INTO documents_fts(rowid, title, content, summary)
	VALUES (NEW.rowid, NEW.title, NEW.content, NEW.summary);
END;

CREATE INDEX IF NOT EXISTS idx_documents_created ON documents(created_at);
CREATE INDEX IF NOT EXISTS idx_documents_summary_status ON documents(summary_status);
CREATE INDEX IF NOT EXISTS idx_documents_embedding_status ON documents(embedding_status);
`

// NewSQLiteDocumentStore opens (or creates) the database under dataDir.
func NewSQLiteDocumentStore(dataDir string) (*SQLiteDocumentStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".readstash")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, config.DatabaseFileName)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return initStore(db)
}

// NewMemoryDocumentStore backs the store with an in-memory database.
func NewMemoryDocumentStore() (*SQLiteDocumentStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	return initStore(db)
}

func initStore(db *sql.DB) (*SQLiteDocumentStore, error) {
	// A single connection keeps writes linearized and keeps the in-memory
	// variant from seeing separate empty databases per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	s := &SQLiteDocumentStore{
		db:     db,
		logger: logger_i.NewLogger("DocumentStore"),
	}
	s.logger.Info("SQLite document store ready")
	return s, nil
}

func (s *SQLiteDocumentStore) Close() error {
	return s.db.Close()
}
