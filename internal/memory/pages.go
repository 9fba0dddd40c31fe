package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/alvmarrod/election-weaver/internal/storage"
	"github.com/sirupsen/logrus"
)

// PageStore holds fetched pages in memory for the duration of a run
type PageStore struct {
	pages map[string]*storage.Page // url -> page
	dirty map[string]bool          // pages not yet written to storage
	mu    sync.RWMutex
}

// NewPageStore creates an empty page store
func NewPageStore() *PageStore {
	return &PageStore{
		pages: make(map[string]*storage.Page),
		dirty: make(map[string]bool),
	}
}

// Get returns the cached body of a page
func (ps *PageStore) Get(url string) (string, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	if page, exists := ps.pages[url]; exists {
		return page.Body, true
	}
	return "", false
}

// Put stores a freshly fetched page and marks it for the next flush
func (ps *PageStore) Put(url, body string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.pages[url] = &storage.Page{
		URL:       url,
		Body:      body,
		FetchedAt: time.Now(),
	}
	ps.dirty[url] = true
}

// Len returns the number of cached pages
func (ps *PageStore) Len() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.pages)
}

// Flush writes pages fetched during this run to SQLite storage
func (ps *PageStore) Flush(store *storage.Storage) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	startTime := time.Now()
	written := 0
	var firstErr error

	for url := range ps.dirty {
		if err := store.UpsertPage(*ps.pages[url]); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			logrus.Warnf("Failed to flush page %s: %v", url, err)
			continue
		}
		delete(ps.dirty, url)
		written++
	}

	logrus.Infof("Flush complete: %d pages written in %v", written, time.Since(startTime))
	return firstErr
}

// LoadFromStorage populates the store with pages younger than maxAge
func (ps *PageStore) LoadFromStorage(store *storage.Storage, maxAge time.Duration) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	pages, err := store.LoadFreshPages(maxAge)
	if err != nil {
		return fmt.Errorf("failed to load pages: %w", err)
	}

	for _, page := range pages {
		ps.pages[page.URL] = page
	}

	logrus.Infof("Loaded %d cached pages into memory", len(pages))
	return nil
}
