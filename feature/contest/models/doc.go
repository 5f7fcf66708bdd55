// Package models defines the persistent entities of the contest registry.
//
// The registry owns all entity state: contests, their books, the users
// observed contributing to them, per-page observation rows, and the
// admin/jury identity records. The reconciliation engine and the scoring
// queries only touch these tables through the registry operations in the
// parent package.
//
// Association tables (contest_admins, contest_jury, contest_books,
// contest_users) are managed by GORM's many2many mapping.
package models
