package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alvmarrod/election-weaver/internal/config"
	"github.com/alvmarrod/election-weaver/internal/crawler"
	"github.com/alvmarrod/election-weaver/internal/election"
	"github.com/alvmarrod/election-weaver/internal/export"
	"github.com/alvmarrod/election-weaver/internal/memory"
	"github.com/alvmarrod/election-weaver/internal/metrics"
	"github.com/alvmarrod/election-weaver/internal/storage"
	"github.com/sirupsen/logrus"
)

// ErrDistrictNotFound is returned when the requested district is not on the root listing
var ErrDistrictNotFound = errors.New("district not found")

// App exports one district of the election results
type App struct {
	cfg        *config.Config
	fetcher    election.Fetcher
	tracker    *metrics.Tracker
	aggregator *election.Aggregator
}

// New creates an App fetching pages through fetcher
func New(cfg *config.Config, fetcher election.Fetcher, tracker *metrics.Tracker) *App {
	return &App{
		cfg:     cfg,
		fetcher: fetcher,
		tracker: tracker,
		aggregator: election.NewAggregator(fetcher,
			election.WithLayout(Layout(cfg)),
			election.WithWorkers(cfg.ConcurrentWorkers),
			election.WithRecorder(tracker),
		),
	}
}

// ListDistricts reads the root listing
func (a *App) ListDistricts(ctx context.Context) (map[string]string, error) {
	doc, err := a.aggregator.FetchDocument(ctx, a.cfg.RootURL)
	if err != nil {
		return nil, fmt.Errorf("failed to load root listing: %w", err)
	}
	return election.ExtractDistricts(doc, a.cfg.RootURL), nil
}

// Run exports district to output. The output file is written only on success.
func (a *App) Run(ctx context.Context, district, output string) error {
	districts, err := a.ListDistricts(ctx)
	if err != nil {
		return err
	}
	logrus.Infof("Root listing has %d districts", len(districts))

	districtURL, ok := districts[district]
	if !ok {
		return fmt.Errorf("%w: %q", ErrDistrictNotFound, district)
	}
	a.tracker.SetDistrict(district)

	dataset, err := a.aggregator.ProcessDistrict(ctx, election.DistrictRef{Name: district, URL: districtURL})
	if err != nil {
		return err
	}

	if err := export.WriteFile(output, dataset); err != nil {
		return err
	}

	logrus.Infof("Wrote %d municipalities and %d parties to %s", len(dataset.Rows), len(dataset.Parties), output)
	return nil
}

// Layout applies the configured cell positions to the default page layout
func Layout(cfg *config.Config) election.Layout {
	layout := election.DefaultLayout()
	if v := cfg.Layout.VotersCell; v != nil {
		layout.VotersCell = *v
	}
	if v := cfg.Layout.EnvelopesCell; v != nil {
		layout.EnvelopesCell = *v
	}
	if v := cfg.Layout.ValidVotesCell; v != nil {
		layout.ValidVotesCell = *v
	}
	if v := cfg.Layout.HeaderRows; v != nil {
		layout.HeaderRows = *v
	}
	return layout
}

// NewFetcher builds the HTTP fetcher and, when cache_path is set, the page cache in front of it.
// The returned close function flushes the cache and must be called once the run is over.
func NewFetcher(cfg *config.Config, tracker *metrics.Tracker) (election.Fetcher, func() error, error) {
	c := crawler.NewCrawler(cfg, func(pagesFetched, pagesFailed int, fetchTime time.Duration) {
		if pagesFetched > 0 {
			tracker.IncrementPagesFetched()
		}
		if pagesFailed > 0 {
			tracker.IncrementPagesFailed()
		}
		tracker.RecordFetchTime(fetchTime)
	})

	if cfg.CachePath == "" {
		return c, func() error { return nil }, nil
	}

	store, err := storage.NewStorage(cfg.CachePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open page cache: %w", err)
	}

	if removed, err := store.DeleteStalePages(cfg.CacheTTL()); err != nil {
		logrus.Warnf("Failed to prune page cache: %v", err)
	} else if removed > 0 {
		logrus.Infof("Pruned %d stale cached pages", removed)
	}

	pages := memory.NewPageStore()
	if err := pages.LoadFromStorage(store, cfg.CacheTTL()); err != nil {
		store.Close()
		return nil, nil, err
	}

	closer := func() error {
		defer store.Close()
		return pages.Flush(store)
	}

	return crawler.NewCachedFetcher(c, pages, tracker.IncrementCacheHits), closer, nil
}
