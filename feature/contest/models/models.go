package models

import (
	"time"
)

// Contest is a scored proofreading competition over a set of books.
type Contest struct {
	CID               uint      `gorm:"column:cid;primaryKey;autoIncrement" json:"cid"`
	Name              string    `gorm:"size:190;uniqueIndex;not null" json:"name"`
	CreatedBy         string    `gorm:"size:100" json:"created_by"`
	CreatedOn         time.Time `gorm:"not null;autoCreateTime" json:"createdon"`
	StartDate         time.Time `gorm:"not null" json:"start_date"`
	EndDate           time.Time `gorm:"not null" json:"end_date"`
	Status            bool      `json:"status"`
	PointPerProofread int       `gorm:"type:smallint" json:"point_per_proofread"`
	PointPerValidate  int       `gorm:"type:smallint" json:"point_per_validate"`
	Lang              string    `gorm:"size:3" json:"lang"`

	Admins []ContestAdmin `gorm:"many2many:contest_admins" json:"-"`
	Jury   []Jury         `gorm:"many2many:contest_jury" json:"-"`
	Books  []Book         `gorm:"many2many:contest_books" json:"-"`
	Users  []User         `gorm:"many2many:contest_users" json:"-"`
}

func (Contest) TableName() string { return "contest" }

// IsExpired reports whether the contest's end date has passed.
func (c Contest) IsExpired(now time.Time) bool {
	return now.After(c.EndDate)
}

// Book is a named document whose pages are tracked for contribution events.
// Books are shared: the same book may belong to several contests.
type Book struct {
	Name string `gorm:"size:190;primaryKey" json:"name"`

	Contests   []Contest   `gorm:"many2many:contest_books" json:"-"`
	IndexPages []IndexPage `gorm:"foreignKey:BookName;references:Name" json:"-"`
}

func (Book) TableName() string { return "book" }

// User is a wiki user observed as a proofreader or validator. Users are
// created lazily by the reconciliation engine and never deleted.
type User struct {
	UserName string `gorm:"column:user_name;size:190;primaryKey" json:"user_name"`

	Contests []Contest `gorm:"many2many:contest_users" json:"-"`
}

func (User) TableName() string { return "user" }

// IndexPage is the latest observed proofread/validate state of one wiki page.
// There is at most one row per (book, page) pair; the engine upserts on
// every run, so a row always reflects the most recent observation.
type IndexPage struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PageName string `gorm:"size:190;not null;uniqueIndex:idx_book_page" json:"page_name"`
	BookName string `gorm:"size:190;uniqueIndex:idx_book_page" json:"book_name"`

	ProofreaderUsername *string    `gorm:"size:190" json:"proofreader_username"`
	ValidatorUsername   *string    `gorm:"size:190" json:"validator_username"`
	ProofreadTime       *time.Time `json:"proofread_time"`
	ValidateTime        *time.Time `json:"validate_time"`
	PRevisionID         *int64     `gorm:"column:p_revision_id" json:"p_revision_id"`
	VRevisionID         *int64     `gorm:"column:v_revision_id" json:"v_revision_id"`

	Book Book `gorm:"foreignKey:BookName;references:Name" json:"-"`
}

func (IndexPage) TableName() string { return "index_page" }

// ContestAdmin is an administrator identity linked to contests. Maintained
// by the contest creation workflow; the engine only reads it.
type ContestAdmin struct {
	UserName string `gorm:"column:user_name;size:190;primaryKey" json:"user_name"`

	Contests []Contest `gorm:"many2many:contest_admins" json:"-"`
}

func (ContestAdmin) TableName() string { return "contest_admin" }

// Jury is a jury member identity linked to contests.
type Jury struct {
	UserName string `gorm:"column:user_name;size:190;primaryKey" json:"user_name"`

	Contests []Contest `gorm:"many2many:contest_jury" json:"-"`
}

func (Jury) TableName() string { return "jury" }

// Review is an optional free-text review of a page authored by a user.
// Not touched by the reconciliation engine.
type Review struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PageID    uint      `gorm:"not null" json:"page_id"`
	Author    string    `gorm:"size:190;not null" json:"author"`
	Body      string    `gorm:"type:text" json:"body"`
	CreatedOn time.Time `gorm:"not null;autoCreateTime" json:"createdon"`

	Page IndexPage `gorm:"foreignKey:PageID" json:"-"`
}

func (Review) TableName() string { return "review" }

// All returns every registry model, in migration order.
func All() []any {
	return []any{
		&Contest{},
		&ContestAdmin{},
		&Jury{},
		&Book{},
		&User{},
		&IndexPage{},
		&Review{},
	}
}
