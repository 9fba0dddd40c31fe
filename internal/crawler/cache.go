package crawler

import (
	"context"

	"github.com/alvmarrod/election-weaver/internal/memory"
	"github.com/sirupsen/logrus"
)

// PageFetcher is anything that can fetch a page by URL
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// CachedFetcher serves pages from a PageStore and fetches only what is missing
type CachedFetcher struct {
	next  PageFetcher
	pages *memory.PageStore
	onHit func()
}

// NewCachedFetcher wraps next with the page store; onHit may be nil
func NewCachedFetcher(next PageFetcher, pages *memory.PageStore, onHit func()) *CachedFetcher {
	return &CachedFetcher{next: next, pages: pages, onHit: onHit}
}

// Fetch implements PageFetcher; failed fetches are not cached
func (cf *CachedFetcher) Fetch(ctx context.Context, url string) (string, error) {
	key := CacheKey(url)

	if body, ok := cf.pages.Get(key); ok {
		logrus.Debugf("Cache hit for %s", url)
		if cf.onHit != nil {
			cf.onHit()
		}
		return body, nil
	}

	body, err := cf.next.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	cf.pages.Put(key, body)
	return body, nil
}
