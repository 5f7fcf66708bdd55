package contest_test

import (
	"context"
	"testing"
	"time"

	"wscontest/core/database"
	"wscontest/feature/contest"
	"wscontest/feature/contest/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// setupRegistry creates an isolated in-memory registry. The raw handle is
// returned too so tests can assert directly on stored rows.
func setupRegistry(t *testing.T) (*contest.Registry, *gorm.DB) {
	t.Helper()

	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	r := contest.NewRegistry(db)
	require.NoError(t, r.Migrate())
	return r, db
}

// seedContest creates a contest through the real creation workflow.
func seedContest(t *testing.T, r *contest.Registry, name string, end time.Time, books ...string) *models.Contest {
	t.Helper()

	svc := contest.NewService(r, zap.NewNop())
	c, err := svc.CreateContest(context.Background(), contest.CreateContestInput{
		Name:              name,
		CreatedBy:         "operator",
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

func TestUpsertUser(t *testing.T) {
	r, db := setupRegistry(t)
	ctx := context.Background()

	u1, err := r.UpsertUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", u1.UserName)

	// Second upsert returns the same row, no duplicate.
	_, err = r.UpsertUser(ctx, "alice")
	require.NoError(t, err)

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestEnsureMember(t *testing.T) {
	r, db := setupRegistry(t)
	ctx := context.Background()

	c := seedContest(t, r, "Winter", time.Now().AddDate(0, 1, 0), "Index:B1")
	_, err := r.UpsertUser(ctx, "alice")
	require.NoError(t, err)

	require.NoError(t, r.EnsureMember(ctx, c.CID, "alice"))
	// Adding an existing membership is a no-op.
	require.NoError(t, r.EnsureMember(ctx, c.CID, "alice"))

	var count int64
	db.Table("contest_users").Where("contest_c_id = ?", c.CID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpsertPage(t *testing.T) {
	r, db := setupRegistry(t)
	ctx := context.Background()

	seedContest(t, r, "Winter", time.Now().AddDate(0, 1, 0), "Index:B1")

	require.NoError(t, r.UpsertPage(ctx, &models.IndexPage{
		PageName: "B1/1",
		BookName: "B1",
	}))

	// Re-observing the same page updates the row in place.
	alice := "alice"
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rev := int64(100)
	require.NoError(t, r.UpsertPage(ctx, &models.IndexPage{
		PageName:            "B1/1",
		BookName:            "B1",
		ProofreaderUsername: &alice,
		ProofreadTime:       &ts,
		PRevisionID:         &rev,
	}))

	var pages []models.IndexPage
	require.NoError(t, db.Find(&pages).Error)
	require.Len(t, pages, 1)
	require.NotNil(t, pages[0].ProofreaderUsername)
	assert.Equal(t, "alice", *pages[0].ProofreaderUsername)
	require.NotNil(t, pages[0].PRevisionID)
	assert.Equal(t, int64(100), *pages[0].PRevisionID)
	assert.Nil(t, pages[0].ValidatorUsername)
}

func TestGetContest_NotFound(t *testing.T) {
	r, _ := setupRegistry(t)

	_, err := r.GetContest(context.Background(), 999)
	assert.ErrorIs(t, err, contest.ErrContestNotFound)
}

func TestCloseContest(t *testing.T) {
	r, _ := setupRegistry(t)
	ctx := context.Background()

	c := seedContest(t, r, "Winter", time.Now().AddDate(0, 1, 0), "Index:B1")
	assert.True(t, c.Status)

	require.NoError(t, r.CloseContest(ctx, c.CID))

	loaded, err := r.GetContest(ctx, c.CID)
	require.NoError(t, err)
	assert.False(t, loaded.Status)
}

func TestTransactionRollback(t *testing.T) {
	r, db := setupRegistry(t)
	ctx := context.Background()

	err := r.Transaction(ctx, func(tx *contest.Registry) error {
		if _, err := tx.UpsertUser(ctx, "alice"); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestAddReview(t *testing.T) {
	r, _ := setupRegistry(t)
	ctx := context.Background()

	seedContest(t, r, "Winter", time.Now().AddDate(0, 1, 0), "Index:B1")
	require.NoError(t, r.UpsertPage(ctx, &models.IndexPage{PageName: "B1/1", BookName: "B1"}))

	review, err := r.AddReview(ctx, 1, "alice", "needs another look at the footnotes")
	require.NoError(t, err)
	assert.NotZero(t, review.ID)
	assert.Equal(t, "alice", review.Author)
}
