package contest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"wscontest/feature/contest/models"
)

// PageContribution is one page credited to a user, with the observation
// details recorded by the reconciliation engine.
type PageContribution struct {
	PageName   string     `json:"page_name"`
	BookName   string     `json:"book_name"`
	Role       string     `json:"role"` // proofreader or validator
	Timestamp  *time.Time `json:"timestamp"`
	RevisionID *int64     `json:"revision_id"`
}

// UserScore is the computed standing of one user within a contest.
type UserScore struct {
	UserName       string             `json:"user_name"`
	ProofreadCount int                `json:"proofread_count"`
	ValidatedCount int                `json:"validated_count"`
	Points         int                `json:"points"`
	Pages          []PageContribution `json:"pages"`
}

// Standing is the computed per-user result table of a contest.
type Standing struct {
	CID   uint        `json:"cid"`
	Name  string      `json:"name"`
	Users []UserScore `json:"users"`
}

// Standing computes proofread/validate counts and weighted points for every
// user linked to the contest. Only pages whose book belongs to the contest
// are counted, so contributions never leak across contests sharing a user.
func (r *Registry) Standing(ctx context.Context, cid uint) (*Standing, error) {
	c, err := r.GetContest(ctx, cid)
	if err != nil {
		return nil, err
	}

	bookNames := make([]string, 0, len(c.Books))
	for _, b := range c.Books {
		bookNames = append(bookNames, b.Name)
	}

	standing := &Standing{CID: c.CID, Name: c.Name, Users: []UserScore{}}
	if len(bookNames) == 0 {
		return standing, nil
	}

	for _, u := range c.Users {
		score, err := r.scoreUser(ctx, c, u.UserName, bookNames)
		if err != nil {
			return nil, err
		}
		standing.Users = append(standing.Users, *score)
	}

	// Highest points first, names break ties for deterministic output.
	sort.Slice(standing.Users, func(i, j int) bool {
		if standing.Users[i].Points != standing.Users[j].Points {
			return standing.Users[i].Points > standing.Users[j].Points
		}
		return standing.Users[i].UserName < standing.Users[j].UserName
	})

	return standing, nil
}

func (r *Registry) scoreUser(ctx context.Context, c *models.Contest, userName string, bookNames []string) (*UserScore, error) {
	var pages []models.IndexPage
	err := r.db.WithContext(ctx).
		Where("book_name IN ?", bookNames).
		Where("proofreader_username = ? OR validator_username = ?", userName, userName).
		Order("book_name, page_name").
		Find(&pages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load pages of user %q in contest %d: %w", userName, c.CID, err)
	}

	score := &UserScore{UserName: userName, Pages: []PageContribution{}}
	for _, p := range pages {
		if p.ProofreaderUsername != nil && *p.ProofreaderUsername == userName {
			score.ProofreadCount++
			score.Pages = append(score.Pages, PageContribution{
				PageName:   p.PageName,
				BookName:   p.BookName,
				Role:       "proofreader",
				Timestamp:  p.ProofreadTime,
				RevisionID: p.PRevisionID,
			})
		}
		if p.ValidatorUsername != nil && *p.ValidatorUsername == userName {
			score.ValidatedCount++
			score.Pages = append(score.Pages, PageContribution{
				PageName:   p.PageName,
				BookName:   p.BookName,
				Role:       "validator",
				Timestamp:  p.ValidateTime,
				RevisionID: p.VRevisionID,
			})
		}
	}

	score.Points = score.ProofreadCount*c.PointPerProofread + score.ValidatedCount*c.PointPerValidate
	return score, nil
}
