package contest

import (
	"context"
	"errors"
	"fmt"

	"wscontest/feature/contest/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Registry is the explicitly constructed handle to the contest store.
// The reconciliation engine and the scoring queries receive one at call
// time instead of sharing a module-level session.
type Registry struct {
	db *gorm.DB
}

// NewRegistry wraps a database connection into a registry handle.
func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// Migrate creates or updates the registry schema.
func (r *Registry) Migrate() error {
	return r.db.AutoMigrate(models.All()...)
}

// Transaction runs fn against a transactional registry. Rollback happens
// automatically when fn returns an error.
func (r *Registry) Transaction(ctx context.Context, fn func(*Registry) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Registry{db: tx})
	})
}

// ListContests returns all contests with their linked books.
func (r *Registry) ListContests(ctx context.Context) ([]models.Contest, error) {
	var contests []models.Contest
	err := r.db.WithContext(ctx).Preload("Books").Order("cid").Find(&contests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list contests: %w", err)
	}
	return contests, nil
}

// GetContest returns one contest with admins, books and users preloaded.
func (r *Registry) GetContest(ctx context.Context, cid uint) (*models.Contest, error) {
	var c models.Contest
	err := r.db.WithContext(ctx).
		Preload("Admins").Preload("Jury").Preload("Books").Preload("Users").
		First(&c, "cid = ?", cid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("contest %d: %w", cid, ErrContestNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load contest %d: %w", cid, err)
	}
	return &c, nil
}

// CloseContest marks a contest inactive. The transition is one-directional;
// nothing ever reopens a closed contest.
func (r *Registry) CloseContest(ctx context.Context, cid uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.Contest{}).
		Where("cid = ?", cid).
		Update("status", false).Error
	if err != nil {
		return fmt.Errorf("failed to close contest %d: %w", cid, err)
	}
	return nil
}

// UpsertUser looks up a user by name, creating the row on first sight.
func (r *Registry) UpsertUser(ctx context.Context, name string) (*models.User, error) {
	user := models.User{UserName: name}
	err := r.db.WithContext(ctx).
		Where("user_name = ?", name).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user %q: %w", name, err)
	}
	return &user, nil
}

// EnsureMember links a user to a contest. Adding an existing membership is
// a no-op.
func (r *Registry) EnsureMember(ctx context.Context, cid uint, userName string) error {
	var n int64
	err := r.db.WithContext(ctx).
		Table("contest_users").
		Where("contest_c_id = ? AND user_user_name = ?", cid, userName).
		Count(&n).Error
	if err != nil {
		return fmt.Errorf("failed to check membership of %q in contest %d: %w", userName, cid, err)
	}
	if n > 0 {
		return nil
	}

	err = r.db.WithContext(ctx).
		Model(&models.Contest{CID: cid}).
		Association("Users").
		Append(&models.User{UserName: userName})
	if err != nil {
		return fmt.Errorf("failed to link user %q to contest %d: %w", userName, cid, err)
	}
	return nil
}

// UpsertPage records a page observation, keyed by (book, page). A repeated
// observation replaces the event fields, so the row always holds the latest
// observed state and repeated runs stay idempotent.
func (r *Registry) UpsertPage(ctx context.Context, page *models.IndexPage) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "book_name"}, {Name: "page_name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"proofreader_username", "validator_username",
				"proofread_time", "validate_time",
				"p_revision_id", "v_revision_id",
			}),
		}).
		Create(page).Error
	if err != nil {
		return fmt.Errorf("failed to upsert page %q of book %q: %w", page.PageName, page.BookName, err)
	}
	return nil
}

// AddReview stores a free-text page review.
func (r *Registry) AddReview(ctx context.Context, pageID uint, author, body string) (*models.Review, error) {
	review := models.Review{PageID: pageID, Author: author, Body: body}
	if err := r.db.WithContext(ctx).Create(&review).Error; err != nil {
		return nil, fmt.Errorf("failed to add review for page %d: %w", pageID, err)
	}
	return &review, nil
}
