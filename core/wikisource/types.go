package wikisource

import (
	"errors"
	"time"
)

// ErrSourceUnavailable indicates a network or API failure talking to the
// wiki. The reconciliation engine recovers from it at book granularity.
var ErrSourceUnavailable = errors.New("wikisource unavailable")

// ErrMalformedStatus indicates the API returned a payload that does not
// match the expected page status schema (bad timestamp, missing fields).
var ErrMalformedStatus = errors.New("malformed page status")

// Event records a single quality-control action observed on a page.
type Event struct {
	// User is the wiki user name that performed the action.
	User string
	// Timestamp is when the action happened, parsed at the API boundary.
	Timestamp time.Time
	// RevisionID is the wiki revision in which the action was recorded.
	RevisionID int64
}

// PageStatus is the latest observed proofread/validate state of a page.
// Either event may be absent for pages with no contribution yet.
type PageStatus struct {
	Proofread *Event
	Validate  *Event
}

// Page quality levels used by the Proofread Page extension.
const (
	qualityProofread = 3
	qualityValidated = 4
)
