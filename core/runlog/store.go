// Package runlog keeps a history of solve runs so past results can be listed
// and compared.
package runlog

import (
	"context"
	"sort"
	"time"
)

// RunRecord captures one solve run and its outcome.
type RunRecord struct {
	ID            string         `json:"id"`
	Instance      string         `json:"instance"`
	Status        string         `json:"status"`
	StartedAt     time.Time      `json:"started_at"`
	Duration      time.Duration  `json:"duration"`
	Interventions int            `json:"interventions"`
	Variables     int            `json:"variables"`
	Constraints   int            `json:"constraints"`
	Violations    int            `json:"violations"`
	Objective     float64        `json:"objective"`
	Error         string         `json:"error,omitempty"`
	Starts        map[string]int `json:"starts,omitempty"`
}

// RunQuery defines filters for retrieving records. Zero fields match
// everything.
type RunQuery struct {
	Since    time.Time
	Until    time.Time
	Status   string
	Instance string
	// Limit keeps only the most recent records when positive.
	Limit int
}

// Match reports whether rec satisfies the time, status and instance filters.
func (q RunQuery) Match(rec RunRecord) bool {
	if !q.Since.IsZero() && rec.StartedAt.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && rec.StartedAt.After(q.Until) {
		return false
	}
	if q.Status != "" && rec.Status != q.Status {
		return false
	}
	if q.Instance != "" && rec.Instance != q.Instance {
		return false
	}
	return true
}

// Store persists RunRecords and supports querying.
type Store interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q RunQuery) ([]RunRecord, error)
	Close() error
}

// finish orders records by start time and applies the limit.
func (q RunQuery) finish(recs []RunRecord) []RunRecord {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].StartedAt.Before(recs[j].StartedAt) })
	if q.Limit > 0 && len(recs) > q.Limit {
		recs = recs[len(recs)-q.Limit:]
	}
	return recs
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, RunRecord) error { return nil }

func (NopStore) Query(context.Context, RunQuery) ([]RunRecord, error) { return nil, nil }

func (NopStore) Close() error { return nil }
