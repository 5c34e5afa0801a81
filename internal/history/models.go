package history

import (
	"time"
)

// Entry records one resolved panel call.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	// Call data
	Route       string `json:"route"`
	Method      string `json:"method"`
	URL         string `json:"url"`
	RequestBody string `json:"request_body,omitempty"`
	Seq         uint64 `json:"seq"`

	// Outcome data
	Status        int    `json:"status"` // 0 when no response arrived
	Tone          string `json:"tone"`
	ResponseBody  string `json:"response_body,omitempty"`
	FailureKind   string `json:"failure_kind,omitempty"`
	FailureDetail string `json:"failure_detail,omitempty"`
	Duration      int64  `json:"duration"` // milliseconds

	// Applied is false for completions discarded as stale.
	Applied bool `json:"applied"`
}

// Failed reports whether the call produced no usable response.
func (e Entry) Failed() bool {
	return e.FailureKind != ""
}

// QueryOptions filters and paginates history queries.
type QueryOptions struct {
	Route       string
	Method      string
	StatusMin   int
	StatusMax   int
	AppliedOnly bool

	Limit  int // 0 = no limit
	Offset int
}

// Stats summarizes the session's calls.
type Stats struct {
	Total       int64            `json:"total"`
	Applied     int64            `json:"applied"`
	Discarded   int64            `json:"discarded"`
	Failures    int64            `json:"failures"`
	ToneCounts  map[string]int64 `json:"tone_counts"`
	AverageTime float64          `json:"average_time"`
}
