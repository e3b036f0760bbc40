package models

import "time"

// FetchRun records one refresh against the subgraph.
type FetchRun struct {
	Timestamp  time.Time
	Error      string
	ID         int64
	DurationMs int64
	Fetched    int
	Inserted   int
	Skipped    int
}

// Failed reports whether the run ended with an error.
func (r FetchRun) Failed() bool {
	return r.Error != ""
}
