package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alvmarrod/election-weaver/internal/config"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

// MetricsCallback reports the outcome of one fetch attempt
type MetricsCallback func(pagesFetched, pagesFailed int, fetchTime time.Duration)

// Crawler fetches pages over HTTP with retries
type Crawler struct {
	cfg             *config.Config
	collector       *colly.Collector
	metricsCallback MetricsCallback
}

// NewCrawler creates a new crawler instance
func NewCrawler(cfg *config.Config, metricsCallback MetricsCallback) *Crawler {
	c := &Crawler{
		cfg:             cfg,
		metricsCallback: metricsCallback,
	}

	c.setupColly()
	return c
}

// setupColly configures the shared Colly collector; each fetch works on a clone
func (c *Crawler) setupColly() {
	c.collector = colly.NewCollector(
		colly.UserAgent(c.cfg.UserAgent),
		colly.AllowURLRevisit(), // retries and repeated runs hit the same URL
		colly.MaxDepth(0),
	)

	c.collector.SetRequestTimeout(c.cfg.RequestTimeout())

	// Limit parallelism
	domainGlob := "*"
	if domain, err := ExtractDomain(c.cfg.RootURL); err == nil && domain != "" {
		domainGlob = "*" + domain + "*"
	}
	if err := c.collector.Limit(&colly.LimitRule{
		DomainGlob:  domainGlob,
		Parallelism: c.cfg.ConcurrentWorkers,
		Delay:       c.cfg.RequestDelay(),
	}); err != nil {
		logrus.Warnf("Failed to set request limit: %v", err)
	}
}

// Fetch returns the body of url as text, retrying failed attempts.
// Gives up after the configured number of attempts or when ctx is done.
func (c *Crawler) Fetch(ctx context.Context, url string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= c.cfg.RetryAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		start := time.Now()
		body, err := c.visit(ctx, url)
		elapsed := time.Since(start)

		if err == nil {
			c.report(1, 0, elapsed)
			logrus.Debugf("Fetched %s (%d bytes, attempt %d)", url, len(body), attempt)
			return body, nil
		}

		c.report(0, 1, elapsed)
		lastErr = err
		logrus.Warnf("Fetch attempt %d/%d for %s failed: %v", attempt, c.cfg.RetryAttempts, url, err)

		if attempt < c.cfg.RetryAttempts {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.cfg.RetryDelay()):
			}
		}
	}

	return "", fmt.Errorf("failed to fetch %s after %d attempts: %w", url, c.cfg.RetryAttempts, lastErr)
}

// visit performs a single request on a cloned collector so concurrent fetches don't share callbacks
func (c *Crawler) visit(ctx context.Context, url string) (string, error) {
	collector := c.collector.Clone()
	collector.Context = ctx

	var body []byte
	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.Request != nil {
			logrus.Debugf("OnError called for %s: %v (status: %d)", r.Request.URL, err, r.StatusCode)
		}
	})

	if err := collector.Visit(url); err != nil {
		return "", err
	}
	collector.Wait()

	if body == nil {
		return "", errors.New("no response body")
	}

	return string(body), nil
}

func (c *Crawler) report(fetched, failed int, fetchTime time.Duration) {
	if c.metricsCallback != nil {
		c.metricsCallback(fetched, failed, fetchTime)
	}
}
