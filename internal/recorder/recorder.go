package recorder

import "time"

// RunRecord summarizes one reconciliation run.
type RunRecord struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	LastKnown  string // YYYY-MM-DD baseline at start of run
	Target     string // YYYY-MM-DD target day (yesterday UTC)
	Added      int
	Skipped    int
	Aborted    bool
	Note       string
}

// FetchRecord is the outcome of a single day's fetch attempt.
type FetchRecord struct {
	RunID   string
	Day     string // YYYY-MM-DD
	Outcome string // "ok", "skipped", "transport"
	Price   string // decimal text, empty unless Outcome == "ok"
	Detail  string
}

// Recorder persists run history for later analysis. Recording failures are
// logged by callers but never fail a run.
type Recorder interface {
	RecordRun(rec *RunRecord) error
	RecordFetch(rec *FetchRecord) error
	Close() error
}
