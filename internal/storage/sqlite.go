package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Storage persists fetched pages between runs
type Storage struct {
	db *sql.DB
}

// NewStorage creates a new Storage instance, opening/creating the DB and initializing schema
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	storage := &Storage{db: db}

	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// initSchema creates tables and indices if they don't exist
func (s *Storage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		url TEXT PRIMARY KEY,
		body TEXT NOT NULL,
		fetched_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pages_fetched_at ON pages(fetched_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// UpsertPage inserts a page or replaces the stored body and fetch time
func (s *Storage) UpsertPage(page Page) error {
	_, err := s.db.Exec(`
		INSERT INTO pages (url, body, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			body = EXCLUDED.body,
			fetched_at = EXCLUDED.fetched_at
	`, page.URL, page.Body, page.FetchedAt.UTC())

	if err != nil {
		return fmt.Errorf("failed to upsert page: %w", err)
	}
	return nil
}

// LoadFreshPages returns all pages fetched within maxAge
func (s *Storage) LoadFreshPages(maxAge time.Duration) ([]*Page, error) {
	rows, err := s.db.Query(`
		SELECT url, body, fetched_at
		FROM pages
		WHERE fetched_at >= ?
		ORDER BY fetched_at ASC
	`, time.Now().Add(-maxAge).UTC())

	if err != nil {
		return nil, fmt.Errorf("failed to load pages: %w", err)
	}
	defer rows.Close()

	var pages []*Page
	for rows.Next() {
		var page Page
		if err := rows.Scan(&page.URL, &page.Body, &page.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, &page)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pages: %w", err)
	}

	return pages, nil
}

// DeleteStalePages removes pages older than maxAge and returns how many were removed
func (s *Storage) DeleteStalePages(maxAge time.Duration) (int64, error) {
	res, err := s.db.Exec("DELETE FROM pages WHERE fetched_at < ?", time.Now().Add(-maxAge).UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale pages: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}
