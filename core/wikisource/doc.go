// Package wikisource implements the external page status source: a client
// for the MediaWiki API of a Wikisource language edition.
//
// The reconciliation engine depends on two operations:
//  1. CreatedPageList: enumerate the pages created under a book's index
//     (prefix search in the Page namespace).
//  2. PageStatus: derive the proofread and validate events of a page by
//     scanning its revision history for Proofread Page quality markers
//     (pagequality level 3 = proofread, level 4 = validated).
//
// Responses are parsed into a fixed schema at this boundary. Network and API
// failures surface as ErrSourceUnavailable; payloads that cannot be parsed
// into the status schema surface as ErrMalformedStatus. Both carry enough
// context (book, page, revision) for operator logs.
//
// Clients are bound to one language edition. Use a Factory to hand the
// engine a per-contest handle:
//
//	factory := wikisource.NewFactory(cfg.Wiki)
//	client := factory(contest.Lang)
package wikisource
