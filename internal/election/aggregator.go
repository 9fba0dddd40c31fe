package election

import (
	"context"
	"fmt"
	"sync"

	"github.com/alvmarrod/election-weaver/internal/htmltable"
	"github.com/sirupsen/logrus"
)

// Fetcher returns the decoded text of a page
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Recorder receives per-municipality outcomes
type Recorder interface {
	MunicipalitiesListed(n int)
	MunicipalityParsed()
	MunicipalityDropped()
}

type nopRecorder struct{}

func (nopRecorder) MunicipalitiesListed(int) {}
func (nopRecorder) MunicipalityParsed()      {}
func (nopRecorder) MunicipalityDropped()     {}

// Aggregator turns a district page into a reconciled dataset
type Aggregator struct {
	fetcher  Fetcher
	layout   Layout
	workers  int
	recorder Recorder
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithLayout overrides the results page layout
func WithLayout(layout Layout) Option {
	return func(a *Aggregator) { a.layout = layout }
}

// WithWorkers sets how many municipalities are fetched at once
func WithWorkers(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithRecorder reports outcomes to r
func WithRecorder(r Recorder) Option {
	return func(a *Aggregator) {
		if r != nil {
			a.recorder = r
		}
	}
}

// NewAggregator creates an aggregator; without options it works sequentially
func NewAggregator(fetcher Fetcher, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetcher:  fetcher,
		layout:   DefaultLayout(),
		workers:  1,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FetchDocument fetches and decodes a page
func (a *Aggregator) FetchDocument(ctx context.Context, url string) (*htmltable.Document, error) {
	body, err := a.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return htmltable.Decode(body)
}

// MunicipalityResult fetches one results page.
// Returns false when the page is unreachable or carries no turnout block.
func (a *Aggregator) MunicipalityResult(ctx context.Context, url string) (MunicipalityStats, *PartyVotes, bool) {
	doc, err := a.FetchDocument(ctx, url)
	if err != nil {
		logrus.Warnf("Failed to fetch municipality page %s: %v", url, err)
		return MunicipalityStats{}, nil, false
	}

	stats, ok := ParseBasicStats(doc, a.layout)
	if !ok {
		logrus.Debugf("No turnout block on %s", url)
		return MunicipalityStats{}, nil, false
	}

	return stats, ParsePartyVotes(doc, a.layout), true
}

// municipalityResult is the outcome of one job; ok=false means dropped
type municipalityResult struct {
	ref   MunicipalityRef
	stats MunicipalityStats
	votes *PartyVotes
	ok    bool
}

// ProcessDistrict fetches every municipality of a district and reconciles the party columns.
// Only a failure to read the district page itself is returned as an error.
func (a *Aggregator) ProcessDistrict(ctx context.Context, district DistrictRef) (*Dataset, error) {
	name := district.Name
	logrus.Infof("Processing district %s", name)

	doc, err := a.FetchDocument(ctx, district.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load district %s: %w", name, err)
	}

	municipalities := ExtractMunicipalities(doc, district.URL)
	a.recorder.MunicipalitiesListed(len(municipalities))
	logrus.Infof("District %s lists %d municipalities", name, len(municipalities))

	results, err := a.collect(ctx, municipalities)
	if err != nil {
		return nil, err
	}

	dataset := fold(name, results)
	reconcile(dataset)

	logrus.Infof("District %s: %d municipalities parsed, %d parties", name, len(dataset.Rows), len(dataset.Parties))
	return dataset, nil
}

// collect runs the workers; results keep listing positions regardless of completion order
func (a *Aggregator) collect(ctx context.Context, municipalities []MunicipalityRef) ([]municipalityResult, error) {
	results := make([]municipalityResult, len(municipalities))

	queue := NewQueue()

	var wg sync.WaitGroup
	for w := 0; w < a.workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			a.worker(ctx, id, queue, results)
		}(w + 1)
	}

	// every listing entry is a job, so a municipality linked twice yields two rows
	for i, ref := range municipalities {
		if ctx.Err() != nil {
			break
		}
		queue.Push(job{index: i, ref: ref})
	}
	queue.Stop()

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// worker drains the queue; each job writes only its own slot of results
func (a *Aggregator) worker(ctx context.Context, id int, queue *Queue, results []municipalityResult) {
	for {
		if ctx.Err() != nil {
			return
		}

		j, ok := queue.Pop()
		if !ok {
			return
		}

		stats, votes, ok := a.MunicipalityResult(ctx, j.ref.URL)
		if !ok {
			a.recorder.MunicipalityDropped()
			logrus.Infof("Worker %d: dropped %s (%s)", id, j.ref.Name, j.ref.Code)
			continue
		}

		results[j.index] = municipalityResult{ref: j.ref, stats: stats, votes: votes, ok: true}
		a.recorder.MunicipalityParsed()
		logrus.Debugf("Worker %d: parsed %s (%d parties)", id, j.ref.Name, votes.Len())
	}
}

// fold builds rows and the party universe from successful results in listing order
func fold(district string, results []municipalityResult) *Dataset {
	universe := NewPartyVotes()
	dataset := &Dataset{District: district, Rows: []ResultRow{}}

	for _, r := range results {
		if !r.ok {
			continue
		}

		row := ResultRow{
			Municipality: r.ref,
			Stats:        r.stats,
			Votes:        make(map[string]int, r.votes.Len()),
		}
		for _, party := range r.votes.Names() {
			count, _ := r.votes.Get(party)
			row.Votes[party] = count
			universe.Set(party, 0)
		}
		dataset.Rows = append(dataset.Rows, row)
	}

	dataset.Parties = universe.Names()
	return dataset
}

// reconcile gives every row an explicit zero for parties it did not report
func reconcile(dataset *Dataset) {
	for _, row := range dataset.Rows {
		for _, party := range dataset.Parties {
			if _, ok := row.Votes[party]; !ok {
				row.Votes[party] = 0
			}
		}
	}
}
