package reconcile

import (
	"context"
	"testing"
	"time"

	"wscontest/core/database"
	"wscontest/core/wikisource"
	"wscontest/core/wikisource/mocks"
	"wscontest/feature/contest"
	"wscontest/feature/contest/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	registry *contest.Registry
	db       *gorm.DB
	client   *mocks.Client
	engine   *Engine
}

func setup(t *testing.T, cfg Config) *fixture {
	t.Helper()

	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	registry := contest.NewRegistry(db)
	require.NoError(t, registry.Migrate())

	client := new(mocks.Client)
	factory := func(lang string) wikisource.Client { return client }

	engine := New(registry, factory, zap.NewNop(), cfg)
	engine.now = func() time.Time { return testNow }

	return &fixture{registry: registry, db: db, client: client, engine: engine}
}

func (f *fixture) seedContest(t *testing.T, name string, end time.Time, books ...string) *models.Contest {
	t.Helper()

	svc := contest.NewService(f.registry, zap.NewNop())
	c, err := svc.CreateContest(context.Background(), contest.CreateContestInput{
		Name:              name,
		StartDate:         end.AddDate(0, -1, 0),
		EndDate:           end,
		Lang:              "en",
		PointPerProofread: 2,
		PointPerValidate:  3,
		BookNames:         books,
	})
	require.NoError(t, err)
	return c
}

func event(user string, ts time.Time, rev int64) *wikisource.Event {
	return &wikisource.Event{User: user, Timestamp: ts, RevisionID: rev}
}

func TestRun_EndToEnd(t *testing.T) {
	f := setup(t, Config{Granularity: GranularityContest})
	c := f.seedContest(t, "Spring2024", testNow.AddDate(0, 1, 0), "Index:B1")

	f.client.On("CreatedPageList", mock.Anything, "B1").Return([]string{"B1/1", "B1/2"}, nil)
	f.client.On("PageStatus", mock.Anything, "B1/1").Return(&wikisource.PageStatus{
		Proofread: event("alice", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), 100),
	}, nil)
	f.client.On("PageStatus", mock.Anything, "B1/2").Return(&wikisource.PageStatus{
		Validate: event("alice", time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), 101),
	}, nil)

	report, err := f.engine.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Contests, 1)
	assert.False(t, report.Contests[0].Skipped)
	require.Len(t, report.Contests[0].Books, 1)
	assert.Equal(t, OutcomeSuccess, report.Contests[0].Books[0].Outcome)
	assert.Equal(t, 2, report.Contests[0].Books[0].Pages)
	assert.NotEmpty(t, report.RunID)

	standing, err := f.registry.Standing(context.Background(), c.CID)
	require.NoError(t, err)
	require.Len(t, standing.Users, 1)

	alice := standing.Users[0]
	assert.Equal(t, "alice", alice.UserName)
	assert.Equal(t, 1, alice.ProofreadCount)
	assert.Equal(t, 1, alice.ValidatedCount)
	assert.Equal(t, 5, alice.Points)
}

func TestRun_ClosesExpiredContestWithoutQueries(t *testing.T) {
	f := setup(t, Config{Granularity: GranularityContest})
	c := f.seedContest(t, "Ended", testNow.AddDate(0, 0, -1), "Index:B1")

	report, err := f.engine.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Contests, 1)
	assert.True(t, report.Contests[0].Closed)
	assert.True(t, report.Contests[0].Skipped)

	loaded, err := f.registry.GetContest(context.Background(), c.CID)
	require.NoError(t, err)
	assert.False(t, loaded.Status)

	// No external calls for closed contests.
	f.client.AssertNotCalled(t, "CreatedPageList", mock.Anything, mock.Anything)
	f.client.AssertNotCalled(t, "PageStatus", mock.Anything, mock.Anything)

	// Closed stays closed on the next run, and still no queries.
	report, err = f.engine.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Contests[0].Closed)
	assert.True(t, report.Contests[0].Skipped)

	loaded, err = f.registry.GetContest(context.Background(), c.CID)
	require.NoError(t, err)
	assert.False(t, loaded.Status)
}

func TestRun_FailedBookDoesNotBlockSiblings(t *testing.T) {
	f := setup(t, Config{Granularity: GranularityContest})
	f.seedContest(t, "Spring", testNow.AddDate(0, 1, 0), "Index:Bad", "Index:Good")

	f.client.On("CreatedPageList", mock.Anything, "Bad").Return(nil, wikisource.ErrSourceUnavailable)
	f.client.On("CreatedPageList", mock.Anything, "Good").Return([]string{"Good/1"}, nil)
	f.client.On("PageStatus", mock.Anything, "Good/1").Return(&wikisource.PageStatus{}, nil)

	report, err := f.engine.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Contests, 1)
	books := map[string]BookResult{}
	for _, b := range report.Contests[0].Books {
		books[b.Name] = b
	}
	require.Len(t, books, 2)
	assert.Equal(t, OutcomeFailure, books["Bad"].Outcome)
	assert.NotEmpty(t, books["Bad"].Err)
	assert.Equal(t, OutcomeSuccess, books["Good"].Outcome)
	assert.Equal(t, 1, books["Good"].Pages)
	assert.Equal(t, 1, report.FailedBooks())

	// The sibling book's page row was persisted.
	var count int64
	f.db.Model(&models.IndexPage{}).Where("book_name = ?", "Good").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRun_PageFailureAbortsRemainderOfBook(t *testing.T) {
	f := setup(t, Config{Granularity: GranularityContest})
	f.seedContest(t, "Spring", testNow.AddDate(0, 1, 0), "Index:B1")

	f.client.On("CreatedPageList", mock.Anything, "B1").Return([]string{"B1/1", "B1/2", "B1/3"}, nil)
	f.client.On("PageStatus", mock.Anything, "B1/1").Return(&wikisource.PageStatus{}, nil)
	f.client.On("PageStatus", mock.Anything, "B1/2").Return(nil, wikisource.ErrMalformedStatus)

	report, err := f.engine.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Contests[0].Books, 1)
	br := report.Contests[0].Books[0]
	assert.Equal(t, OutcomeFailure, br.Outcome)
	assert.Equal(t, 1, br.Pages)

	// The page after the failing one is never requested.
	f.client.AssertNotCalled(t, "PageStatus", mock.Anything, "B1/3")

	// Pages processed before the failure are still committed.
	var count int64
	f.db.Model(&models.IndexPage{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRun_Idempotent(t *testing.T) {
	f := setup(t, Config{Granularity: GranularityContest})
	c := f.seedContest(t, "Spring", testNow.AddDate(0, 1, 0), "Index:B1")

	f.client.On("CreatedPageList", mock.Anything, "B1").Return([]string{"B1/1"}, nil)
	f.client.On("PageStatus", mock.Anything, "B1/1").Return(&wikisource.PageStatus{
		Proofread: event("alice", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), 100),
		Validate:  event("bob", time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), 101),
	}, nil)

	_, err := f.engine.Run(context.Background())
	require.NoError(t, err)
	_, err = f.engine.Run(context.Background())
	require.NoError(t, err)

	// Two runs over unchanged external state: one row, no double counting.
	var count int64
	f.db.Model(&models.IndexPage{}).Count(&count)
	assert.Equal(t, int64(1), count)

	standing, err := f.registry.Standing(context.Background(), c.CID)
	require.NoError(t, err)
	require.Len(t, standing.Users, 2)
	for _, u := range standing.Users {
		switch u.UserName {
		case "alice":
			assert.Equal(t, 1, u.ProofreadCount)
			assert.Equal(t, 0, u.ValidatedCount)
			assert.Equal(t, 2, u.Points)
		case "bob":
			assert.Equal(t, 0, u.ProofreadCount)
			assert.Equal(t, 1, u.ValidatedCount)
			assert.Equal(t, 3, u.Points)
		}
	}
}

func TestRun_BothEventsPopulateOneRow(t *testing.T) {
	f := setup(t, Config{Granularity: GranularityContest})
	f.seedContest(t, "Spring", testNow.AddDate(0, 1, 0), "Index:B1")

	pTime := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	vTime := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	f.client.On("CreatedPageList", mock.Anything, "B1").Return([]string{"B1/1"}, nil)
	f.client.On("PageStatus", mock.Anything, "B1/1").Return(&wikisource.PageStatus{
		Proofread: event("alice", pTime, 100),
		Validate:  event("bob", vTime, 101),
	}, nil)

	_, err := f.engine.Run(context.Background())
	require.NoError(t, err)

	var page models.IndexPage
	require.NoError(t, f.db.First(&page, "page_name = ?", "B1/1").Error)

	require.NotNil(t, page.ProofreaderUsername)
	assert.Equal(t, "alice", *page.ProofreaderUsername)
	require.NotNil(t, page.PRevisionID)
	assert.Equal(t, int64(100), *page.PRevisionID)
	require.NotNil(t, page.ProofreadTime)
	assert.True(t, page.ProofreadTime.Equal(pTime))

	require.NotNil(t, page.ValidatorUsername)
	assert.Equal(t, "bob", *page.ValidatorUsername)
	require.NotNil(t, page.VRevisionID)
	assert.Equal(t, int64(101), *page.VRevisionID)
	require.NotNil(t, page.ValidateTime)
	assert.True(t, page.ValidateTime.Equal(vTime))
}

func TestRun_BookGranularity(t *testing.T) {
	f := setup(t, Config{Granularity: GranularityBook})
	f.seedContest(t, "Spring", testNow.AddDate(0, 1, 0), "Index:B1", "Index:B2")

	f.client.On("CreatedPageList", mock.Anything, "B1").Return([]string{"B1/1"}, nil)
	f.client.On("CreatedPageList", mock.Anything, "B2").Return([]string{"B2/1"}, nil)
	f.client.On("PageStatus", mock.Anything, mock.Anything).Return(&wikisource.PageStatus{}, nil)

	report, err := f.engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.ProcessedPages())

	var count int64
	f.db.Model(&models.IndexPage{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestRun_RunGranularity(t *testing.T) {
	f := setup(t, Config{Granularity: GranularityRun})
	c := f.seedContest(t, "Spring", testNow.AddDate(0, 1, 0), "Index:B1")

	f.client.On("CreatedPageList", mock.Anything, "B1").Return([]string{"B1/1"}, nil)
	f.client.On("PageStatus", mock.Anything, "B1/1").Return(&wikisource.PageStatus{
		Proofread: event("alice", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), 100),
	}, nil)

	report, err := f.engine.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Contests, 1)

	standing, err := f.registry.Standing(context.Background(), c.CID)
	require.NoError(t, err)
	require.Len(t, standing.Users, 1)
	assert.Equal(t, 2, standing.Users[0].Points)
}

func TestRun_EmptyStatusStillPersistsPage(t *testing.T) {
	f := setup(t, Config{Granularity: GranularityContest})
	f.seedContest(t, "Spring", testNow.AddDate(0, 1, 0), "Index:B1")

	f.client.On("CreatedPageList", mock.Anything, "B1").Return([]string{"B1/1"}, nil)
	f.client.On("PageStatus", mock.Anything, "B1/1").Return(&wikisource.PageStatus{}, nil)

	_, err := f.engine.Run(context.Background())
	require.NoError(t, err)

	var page models.IndexPage
	require.NoError(t, f.db.First(&page, "page_name = ?", "B1/1").Error)
	assert.Nil(t, page.ProofreaderUsername)
	assert.Nil(t, page.ValidatorUsername)

	// No users were invented for an untouched page.
	var users int64
	f.db.Model(&models.User{}).Count(&users)
	assert.Equal(t, int64(0), users)
}

func TestNew_InvalidGranularityFallsBack(t *testing.T) {
	f := setup(t, Config{Granularity: "hourly"})
	assert.Equal(t, GranularityContest, f.engine.cfg.Granularity)
}
