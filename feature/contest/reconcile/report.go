package reconcile

import "time"

// Outcome classifies the result of processing one unit of work.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// BookResult reports the processing of one book within a contest.
type BookResult struct {
	// Name is the book's index name.
	Name string `json:"name"`

	// Outcome indicates whether the book was fully processed.
	Outcome Outcome `json:"outcome"`

	// Pages is the number of pages upserted before the book finished or
	// failed.
	Pages int `json:"pages"`

	// Err describes the failure, empty on success.
	Err string `json:"err,omitempty"`
}

// ContestResult reports the processing of one contest.
type ContestResult struct {
	// CID is the contest id.
	CID uint `json:"cid"`

	// Name is the contest name.
	Name string `json:"name"`

	// Closed is true when this run transitioned the contest to inactive
	// because its end date had passed.
	Closed bool `json:"closed"`

	// Skipped is true when no books were queried (contest inactive, or the
	// run deadline was exceeded before reaching it).
	Skipped bool `json:"skipped"`

	// Books contains a result per linked book, in processing order.
	Books []BookResult `json:"books,omitempty"`

	// Err describes a contest-level failure (commit error), empty otherwise.
	Err string `json:"err,omitempty"`
}

// RunReport is the outcome of one reconciliation run. Callers and tests can
// assert on which units failed without inspecting log output.
type RunReport struct {
	// RunID uniquely identifies this run in logs.
	RunID string `json:"run_id"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Contests contains a result per contest, in enumeration order.
	Contests []ContestResult `json:"contests"`
}

// FailedBooks counts book units that did not complete across the whole run.
func (r *RunReport) FailedBooks() int {
	n := 0
	for _, c := range r.Contests {
		for _, b := range c.Books {
			if b.Outcome == OutcomeFailure {
				n++
			}
		}
	}
	return n
}

// ProcessedPages counts pages upserted across the whole run.
func (r *RunReport) ProcessedPages() int {
	n := 0
	for _, c := range r.Contests {
		for _, b := range c.Books {
			n += b.Pages
		}
	}
	return n
}
