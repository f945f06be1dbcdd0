package storage

import "time"

// Run is one stored audit batch.
type Run struct {
	ID         string
	Brand      string
	StartedAt  time.Time
	FinishedAt time.Time // zero while the run is in progress
	ItemCount  int
}

// RunStats counts a run's records by provenance.
type RunStats struct {
	RunID     string
	StartedAt time.Time
	Scraped   int
	Guessed   int
	Fallback  int
}

// Total is the number of records in the run.
func (s RunStats) Total() int {
	return s.Scraped + s.Guessed + s.Fallback
}
