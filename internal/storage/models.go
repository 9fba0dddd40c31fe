package storage

import "time"

// Page is a cached page body keyed by its URL
type Page struct {
	URL       string
	Body      string
	FetchedAt time.Time
}

// Metrics tracks run statistics for export on exit
type Metrics struct {
	StartTime             time.Time `json:"start_time"`
	EndTime               time.Time `json:"end_time"`
	District              string    `json:"district"`
	PagesFetched          int       `json:"pages_fetched"`
	PagesFailed           int       `json:"pages_failed"`
	CacheHits             int       `json:"cache_hits"`
	MunicipalitiesListed  int       `json:"municipalities_listed"`
	MunicipalitiesParsed  int       `json:"municipalities_parsed"`
	MunicipalitiesDropped int       `json:"municipalities_dropped"`
	TotalFetchTimeMs      int64     `json:"total_fetch_time_ms"`
	AvgFetchTimeMs        int64     `json:"avg_fetch_time_ms"`
	TerminationReason     string    `json:"termination_reason"`
}
