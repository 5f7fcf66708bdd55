package reconcile

// Commit granularities for a reconciliation run.
const (
	// GranularityContest commits once per contest (default). A late failure
	// loses at most one contest's worth of updates.
	GranularityContest = "contest"
	// GranularityBook commits once per book.
	GranularityBook = "book"
	// GranularityRun commits everything at the end; a commit failure loses
	// the whole run.
	GranularityRun = "run"
)

// Config holds configuration for the reconciliation engine.
type Config struct {
	// Granularity selects the transaction boundary (contest, book, run).
	Granularity string `mapstructure:"granularity" default:"contest"`
	// RunDeadlineSeconds bounds the whole run. Zero disables the deadline.
	// Contests not reached before the deadline are reported as skipped;
	// already-committed contests stay durable.
	RunDeadlineSeconds int `mapstructure:"run_deadline_seconds" default:"0"`
}

// IsValidGranularity checks if the configured granularity is valid.
func (c Config) IsValidGranularity() bool {
	switch c.Granularity {
	case GranularityContest, GranularityBook, GranularityRun:
		return true
	default:
		return false
	}
}
