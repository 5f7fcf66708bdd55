package contest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wscontest/feature/contest/models"

	"go.uber.org/zap"
)

// Service implements the contest creation and query workflows used by the
// web layer and the CLI.
type Service struct {
	registry *Registry
	logger   *zap.Logger
}

// NewService creates a new contest service.
func NewService(registry *Registry, logger *zap.Logger) *Service {
	return &Service{registry: registry, logger: logger}
}

// CreateContestInput carries the fields of the contest creation workflow.
type CreateContestInput struct {
	Name              string
	CreatedBy         string
	StartDate         time.Time
	EndDate           time.Time
	Lang              string
	PointPerProofread int
	PointPerValidate  int
	// BookNames are index titles; an "Index:" style prefix is stripped.
	BookNames []string
	Admins    []string
	Jury      []string
}

func (in CreateContestInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.Lang == "" {
		return fmt.Errorf("%w: language is required", ErrInvalidInput)
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidInput)
	}
	if in.EndDate.Before(in.StartDate) {
		return fmt.Errorf("%w: end date precedes start date", ErrInvalidInput)
	}
	if in.PointPerProofread < 0 || in.PointPerValidate < 0 {
		return fmt.Errorf("%w: points must not be negative", ErrInvalidInput)
	}
	if len(in.BookNames) == 0 {
		return fmt.Errorf("%w: at least one book is required", ErrInvalidInput)
	}
	return nil
}

// normalizeBookName strips the namespace prefix from an index title,
// e.g. "Index:Some_Book.djvu" becomes "Some_Book.djvu".
func normalizeBookName(name string) string {
	if _, rest, found := strings.Cut(name, ":"); found {
		return rest
	}
	return name
}

// CreateContest validates the input and inserts the contest with its books,
// admins and jury members in one transaction. Contests start active.
func (s *Service) CreateContest(ctx context.Context, in CreateContestInput) (*models.Contest, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var created *models.Contest
	err := s.registry.Transaction(ctx, func(tx *Registry) error {
		var n int64
		if err := tx.db.WithContext(ctx).Model(&models.Contest{}).Where("name = ?", in.Name).Count(&n).Error; err != nil {
			return fmt.Errorf("failed to check contest name: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("%q: %w", in.Name, ErrDuplicateName)
		}

		c := models.Contest{
			Name:              in.Name,
			CreatedBy:         in.CreatedBy,
			StartDate:         in.StartDate,
			EndDate:           in.EndDate,
			Status:            true,
			PointPerProofread: in.PointPerProofread,
			PointPerValidate:  in.PointPerValidate,
			Lang:              in.Lang,
		}

		for _, raw := range in.BookNames {
			name := normalizeBookName(strings.TrimSpace(raw))
			if name == "" {
				continue
			}
			book := models.Book{Name: name}
			if err := tx.db.WithContext(ctx).FirstOrCreate(&book, "name = ?", name).Error; err != nil {
				return fmt.Errorf("failed to upsert book %q: %w", name, err)
			}
			c.Books = append(c.Books, book)
		}

		for _, name := range in.Admins {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			admin := models.ContestAdmin{UserName: name}
			if err := tx.db.WithContext(ctx).FirstOrCreate(&admin, "user_name = ?", name).Error; err != nil {
				return fmt.Errorf("failed to upsert admin %q: %w", name, err)
			}
			c.Admins = append(c.Admins, admin)
		}

		for _, name := range in.Jury {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			member := models.Jury{UserName: name}
			if err := tx.db.WithContext(ctx).FirstOrCreate(&member, "user_name = ?", name).Error; err != nil {
				return fmt.Errorf("failed to upsert jury member %q: %w", name, err)
			}
			c.Jury = append(c.Jury, member)
		}

		if err := tx.db.WithContext(ctx).Create(&c).Error; err != nil {
			return fmt.Errorf("failed to create contest %q: %w", in.Name, err)
		}
		created = &c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("contest created",
		zap.Uint("cid", created.CID),
		zap.String("name", created.Name),
		zap.String("lang", created.Lang),
		zap.Int("books", len(created.Books)),
	)
	return created, nil
}

// ContestSummary is the list view of a contest.
type ContestSummary struct {
	CID       uint      `json:"cid"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Status    bool      `json:"status"`
}

// ListContests returns summaries of all contests.
func (s *Service) ListContests(ctx context.Context) ([]ContestSummary, error) {
	contests, err := s.registry.ListContests(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]ContestSummary, 0, len(contests))
	for _, c := range contests {
		summaries = append(summaries, ContestSummary{
			CID:       c.CID,
			Name:      c.Name,
			StartDate: c.StartDate,
			EndDate:   c.EndDate,
			Status:    c.Status,
		})
	}
	return summaries, nil
}

// ContestDetail is the full view of a contest: metadata, memberships, and
// the computed standing.
type ContestDetail struct {
	Contest  models.Contest `json:"contest_details"`
	Admins   []string       `json:"administrators"`
	Jury     []string       `json:"jury"`
	Books    []string       `json:"books"`
	Standing *Standing      `json:"standing"`
}

// GetContest returns the detail view of one contest, including its standing.
// Unknown ids yield ErrContestNotFound.
func (s *Service) GetContest(ctx context.Context, cid uint) (*ContestDetail, error) {
	c, err := s.registry.GetContest(ctx, cid)
	if err != nil {
		return nil, err
	}

	standing, err := s.registry.Standing(ctx, cid)
	if err != nil {
		return nil, err
	}

	detail := &ContestDetail{
		Contest:  *c,
		Admins:   make([]string, 0, len(c.Admins)),
		Jury:     make([]string, 0, len(c.Jury)),
		Books:    make([]string, 0, len(c.Books)),
		Standing: standing,
	}
	for _, a := range c.Admins {
		detail.Admins = append(detail.Admins, a.UserName)
	}
	for _, j := range c.Jury {
		detail.Jury = append(detail.Jury, j.UserName)
	}
	for _, b := range c.Books {
		detail.Books = append(detail.Books, b.Name)
	}
	return detail, nil
}
