package reconcile

import (
	"context"
	"fmt"
	"time"

	"wscontest/core/logger"
	"wscontest/core/wikisource"
	"wscontest/feature/contest"
	"wscontest/feature/contest/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine drives the reconciliation batch: it closes expired contests, pulls
// page lists and statuses from the external source for every active
// contest's books, and upserts pages, users and memberships into the
// registry.
//
// One invocation processes all contests once. Concurrent invocations are not
// safe; serialize runs externally.
type Engine struct {
	registry *contest.Registry
	clients  wikisource.Factory
	log      *zap.Logger
	cfg      Config

	// now is the clock used for expiry checks, replaceable in tests.
	now func() time.Time
}

// New creates a reconciliation engine. The registry handle and the client
// factory are injected so tests can run against an isolated store and a mock
// source.
func New(registry *contest.Registry, clients wikisource.Factory, log *zap.Logger, cfg Config) *Engine {
	if !cfg.IsValidGranularity() {
		cfg.Granularity = GranularityContest
	}
	return &Engine{
		registry: registry,
		clients:  clients,
		log:      log,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Run performs one reconciliation pass over all contests and returns a
// report with a result per contest and per book. Book-level failures are
// recorded in the report and do not fail the run; a commit failure under
// run granularity does.
func (e *Engine) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{
		RunID:     uuid.NewString(),
		StartedAt: e.now(),
	}
	log := logger.WithRun(e.log, report.RunID)

	if e.cfg.RunDeadlineSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(e.cfg.RunDeadlineSeconds)*time.Second)
		defer cancel()
	}

	contests, err := e.registry.ListContests(ctx)
	if err != nil {
		return nil, fmt.Errorf("reconcile run %s: %w", report.RunID, err)
	}

	log.Info("reconciliation run started",
		zap.Int("contests", len(contests)),
		zap.String("granularity", e.cfg.Granularity),
	)

	process := func(reg *contest.Registry) {
		for i := range contests {
			report.Contests = append(report.Contests, e.processContest(ctx, reg, &contests[i], log))
		}
	}

	if e.cfg.Granularity == GranularityRun {
		// Observed legacy behavior: one commit at the very end. A failed
		// commit here loses the whole run.
		if err := e.registry.Transaction(ctx, func(tx *contest.Registry) error {
			process(tx)
			return nil
		}); err != nil {
			report.FinishedAt = e.now()
			return report, fmt.Errorf("reconcile run %s commit: %w", report.RunID, err)
		}
	} else {
		process(e.registry)
	}

	report.FinishedAt = e.now()
	log.Info("reconciliation run finished",
		zap.Int("pages", report.ProcessedPages()),
		zap.Int("failed_books", report.FailedBooks()),
	)
	return report, nil
}

func (e *Engine) processContest(ctx context.Context, reg *contest.Registry, c *models.Contest, log *zap.Logger) ContestResult {
	cr := ContestResult{CID: c.CID, Name: c.Name}
	clog := log.With(zap.Uint("cid", c.CID), zap.String("contest", c.Name))

	if ctx.Err() != nil {
		cr.Skipped = true
		cr.Err = "run deadline exceeded"
		clog.Warn("contest skipped, run deadline exceeded")
		return cr
	}

	// Active -> closed is the only transition; closed contests never reopen.
	if c.Status && c.IsExpired(e.now()) {
		if err := reg.CloseContest(ctx, c.CID); err != nil {
			cr.Err = err.Error()
			clog.Error("failed to close expired contest", zap.Error(err))
			return cr
		}
		c.Status = false
		cr.Closed = true
		clog.Info("contest closed, end date passed")
	}

	// Closed contests are skipped entirely: no source calls for their books.
	if !c.Status {
		cr.Skipped = true
		return cr
	}

	client := e.clients(c.Lang)

	if e.cfg.Granularity == GranularityContest {
		if err := reg.Transaction(ctx, func(tx *contest.Registry) error {
			cr.Books = e.processBooks(ctx, tx, client, c, clog)
			return nil
		}); err != nil {
			cr.Err = fmt.Sprintf("contest commit: %v", err)
			cr.Books = nil
			clog.Error("contest commit failed", zap.Error(err))
		}
		return cr
	}

	cr.Books = e.processBooks(ctx, reg, client, c, clog)
	return cr
}

func (e *Engine) processBooks(ctx context.Context, reg *contest.Registry, client wikisource.Client, c *models.Contest, log *zap.Logger) []BookResult {
	results := make([]BookResult, 0, len(c.Books))
	for _, book := range c.Books {
		var br BookResult
		if e.cfg.Granularity == GranularityBook {
			if err := reg.Transaction(ctx, func(tx *contest.Registry) error {
				br = e.processBook(ctx, tx, client, c, book, log)
				return nil
			}); err != nil {
				br = BookResult{Name: book.Name, Outcome: OutcomeFailure, Err: fmt.Sprintf("book commit: %v", err)}
				log.Error("book commit failed", zap.String("book", book.Name), zap.Error(err))
			}
		} else {
			br = e.processBook(ctx, reg, client, c, book, log)
		}
		results = append(results, br)
	}
	return results
}

// processBook pulls the page list for one book and upserts every page. Any
// failure, including a failure of a single page, stops this book and is
// reported; sibling books are unaffected.
func (e *Engine) processBook(ctx context.Context, reg *contest.Registry, client wikisource.Client, c *models.Contest, book models.Book, log *zap.Logger) BookResult {
	br := BookResult{Name: book.Name, Outcome: OutcomeSuccess}

	pages, err := client.CreatedPageList(ctx, book.Name)
	if err != nil {
		br.Outcome = OutcomeFailure
		br.Err = err.Error()
		log.Warn("page list fetch failed", zap.String("book", book.Name), zap.Error(err))
		return br
	}

	for _, page := range pages {
		if err := e.processPage(ctx, reg, client, c, book, page); err != nil {
			br.Outcome = OutcomeFailure
			br.Err = err.Error()
			log.Warn("page processing failed, remaining pages of book skipped",
				zap.String("book", book.Name),
				zap.String("page", page),
				zap.Error(err),
			)
			return br
		}
		br.Pages++
	}

	return br
}

// processPage fetches one page's status and records the observation. Users
// named in events are created on first sight and linked to the contest; the
// page row is written even when no event is present yet.
func (e *Engine) processPage(ctx context.Context, reg *contest.Registry, client wikisource.Client, c *models.Contest, book models.Book, page string) error {
	status, err := client.PageStatus(ctx, page)
	if err != nil {
		return err
	}

	row := &models.IndexPage{
		PageName: page,
		BookName: book.Name,
	}

	if ev := status.Proofread; ev != nil {
		user, err := e.creditUser(ctx, reg, c, ev.User)
		if err != nil {
			return err
		}
		ts := ev.Timestamp
		rev := ev.RevisionID
		row.ProofreaderUsername = &user.UserName
		row.ProofreadTime = &ts
		row.PRevisionID = &rev
	}

	if ev := status.Validate; ev != nil {
		user, err := e.creditUser(ctx, reg, c, ev.User)
		if err != nil {
			return err
		}
		ts := ev.Timestamp
		rev := ev.RevisionID
		row.ValidatorUsername = &user.UserName
		row.ValidateTime = &ts
		row.VRevisionID = &rev
	}

	return reg.UpsertPage(ctx, row)
}

// creditUser upserts the user row and its contest membership.
func (e *Engine) creditUser(ctx context.Context, reg *contest.Registry, c *models.Contest, name string) (*models.User, error) {
	user, err := reg.UpsertUser(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := reg.EnsureMember(ctx, c.CID, user.UserName); err != nil {
		return nil, err
	}
	return user, nil
}
