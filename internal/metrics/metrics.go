package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/alvmarrod/election-weaver/internal/storage"
)

// Tracker holds and manages run metrics
type Tracker struct {
	mu               sync.Mutex
	data             storage.Metrics
	totalFetchTimeMs int64
	fetchCount       int
}

// NewTracker creates a new metrics tracker
func NewTracker() *Tracker {
	return &Tracker{
		data: storage.Metrics{
			StartTime: time.Now(),
		},
	}
}

// SetDistrict records which district the run exports
func (t *Tracker) SetDistrict(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.District = name
}

// IncrementPagesFetched increments the successful fetch counter
func (t *Tracker) IncrementPagesFetched() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.PagesFetched++
}

// IncrementPagesFailed increments the failed fetch counter
func (t *Tracker) IncrementPagesFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.PagesFailed++
}

// IncrementCacheHits increments the page cache hit counter
func (t *Tracker) IncrementCacheHits() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.CacheHits++
}

// RecordFetchTime records a page fetch duration
func (t *Tracker) RecordFetchTime(duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totalFetchTimeMs += duration.Milliseconds()
	t.fetchCount++
}

// MunicipalitiesListed adds to the number of municipalities found on district pages
func (t *Tracker) MunicipalitiesListed(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.MunicipalitiesListed += n
}

// MunicipalityParsed increments the parsed municipalities counter
func (t *Tracker) MunicipalityParsed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.MunicipalitiesParsed++
}

// MunicipalityDropped increments the dropped municipalities counter
func (t *Tracker) MunicipalityDropped() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.MunicipalitiesDropped++
}

// GetSnapshot returns a copy of current metrics
func (t *Tracker) GetSnapshot() storage.Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := t.data
	snapshot.TotalFetchTimeMs = t.totalFetchTimeMs

	if t.fetchCount > 0 {
		snapshot.AvgFetchTimeMs = t.totalFetchTimeMs / int64(t.fetchCount)
	}

	return snapshot
}

// WriteToFile exports metrics to a JSON file
func (t *Tracker) WriteToFile(path, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.data.EndTime = time.Now()
	t.data.TerminationReason = reason
	t.data.TotalFetchTimeMs = t.totalFetchTimeMs

	if t.fetchCount > 0 {
		t.data.AvgFetchTimeMs = t.totalFetchTimeMs / int64(t.fetchCount)
	}

	jsonData, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}

	return nil
}

// LogProgress returns a one-line summary for periodic updates
func (t *Tracker) LogProgress() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return fmt.Sprintf("Municipalities: %d listed, %d parsed, %d dropped | Pages: %d fetched, %d failed, %d cached",
		t.data.MunicipalitiesListed,
		t.data.MunicipalitiesParsed,
		t.data.MunicipalitiesDropped,
		t.data.PagesFetched,
		t.data.PagesFailed,
		t.data.CacheHits,
	)
}
