package domain

import "time"

// TrailOperation enumerates the auditable operations.
type TrailOperation string

const (
	TrailOpHistoryUpdate TrailOperation = "HISTORY_UPDATE"
	TrailOpFreshSync     TrailOperation = "FRESH_SYNC"
	TrailOpLatestRefresh TrailOperation = "LATEST_REFRESH"
)

// TrailState enumerates the outcome of an audited operation.
type TrailState string

const (
	TrailStateSuccess TrailState = "SUCCESS"
	TrailStateError   TrailState = "ERROR"
)

// TrailEntry is the immutable audit record of one reconciliation or cache
// refresh invocation. Exactly one entry is written per invocation, on both
// the success and the failure path, so the trail is a complete record of
// attempts rather than only of successes. Retention is an external concern.
type TrailEntry struct {
	TrailID        string         `json:"trailID"` // Primary Key (UUID)
	Operation      TrailOperation `json:"operation"`
	State          TrailState     `json:"state"`
	Date           time.Time      `json:"date"` // instant the operation ran
	EvaluatedCount int            `json:"evaluatedCount"`
	SkippedCount   int            `json:"skippedCount"`
	AffectedIDs    []string       `json:"affectedIDs"` // rate record ids, in write order
}
