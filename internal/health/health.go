// Package health probes configured MCP servers for liveness and classifies
// the results. Probes never raise to their caller; every outcome becomes a
// classified record, so aggregate checks always complete for every server.
package health

import (
	"time"
)

const (
	// StatusHealthy means the server answered the introspection call with a
	// non-empty tool list inside the probe timeout.
	StatusHealthy Status = "healthy"

	// StatusDegraded means the server process is reachable but appears to
	// need credentials.
	StatusDegraded Status = "degraded"

	// StatusDown means the server could not be reached or did not answer in
	// time.
	StatusDown Status = "down"
)

// Status classifies the outcome of a single liveness probe.
type Status string

// Record is the result of probing one server. Produced fresh on every
// check; never persisted.
type Record struct {
	Server          string `json:"server"`
	Status          Status `json:"status"`
	Connected       bool   `json:"connected"`
	CallCount       uint64 `json:"callCount"`
	LastError       string `json:"lastError,omitempty"`
	CheckDurationMs int64  `json:"checkDurationMs"`
}

// Summary partitions a set of records by status.
type Summary struct {
	Total    int `json:"total"`
	Healthy  int `json:"healthy"`
	Degraded int `json:"degraded"`
	Down     int `json:"down"`
}

// CheckResult aggregates the records of one full probe pass. Summary fields
// always equal the counted partition of Records.
type CheckResult struct {
	Records   []Record  `json:"records"`
	Summary   Summary   `json:"summary"`
	Timestamp time.Time `json:"timestamp"`
}

// Healthy reports whether every record in the result is healthy.
func (r CheckResult) Healthy() bool {
	return r.Summary.Healthy == r.Summary.Total
}

func summarize(records []Record) Summary {
	s := Summary{Total: len(records)}
	for _, rec := range records {
		switch rec.Status {
		case StatusHealthy:
			s.Healthy++
		case StatusDegraded:
			s.Degraded++
		default:
			s.Down++
		}
	}
	return s
}
