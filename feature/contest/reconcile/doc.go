// Package reconcile implements the batch engine that merges externally
// observed page events into the contest registry.
//
// A run iterates all contests. Contests whose end date has passed are
// closed (the only lifecycle transition; nothing reopens a contest) and
// skipped without touching the external source. For each active contest the
// engine obtains a Wikisource client for the contest's language, enumerates
// the created pages of every linked book, fetches each page's status and
// upserts the observation: page rows keyed by (book, page), lazily created
// user rows, and idempotent contest memberships. Running twice against
// unchanged external state leaves the registry unchanged.
//
// # Failure isolation
//
// External-source and parse failures are recovered at book granularity: the
// failing book is recorded in the RunReport and its remaining pages are
// skipped, while sibling books and contests continue. Commit boundaries are
// configurable (per contest by default, per book, or one commit per run);
// only a commit failure under run granularity fails the whole run.
//
// # Usage
//
//	engine := reconcile.New(registry, wikisource.NewFactory(cfg.Wiki), log, cfg.Reconcile)
//	report, err := engine.Run(ctx)
package reconcile
