// Package contest implements the contest registry and its read/write
// operations.
//
// It provides three surfaces:
//
//   - Registry: the explicitly constructed store handle. All entity state is
//     owned here; the reconciliation engine mutates it only through upsert
//     operations (UpsertUser, EnsureMember, UpsertPage, CloseContest), and
//     everything runs inside caller-chosen transaction boundaries.
//   - Standing: the scoring aggregator. Computes per-user proofread and
//     validate counts and weighted points for one contest, restricted to
//     pages of the contest's own books.
//   - Service: the contest creation and query workflows consumed by the CLI
//     and by the (external) web layer.
//
// # Components
//
//   - models/: GORM entities and association tables.
//   - reconcile/: the batch engine pulling page status from Wikisource.
package contest
