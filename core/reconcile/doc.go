// Package reconcile applies spreadsheet import batches to the asset
// collection.
//
// An import runs in three steps:
//
//  1. Normalize maps each raw row onto the canonical asset fields through an
//     alias table, so English and Thai column headers both resolve. Rows
//     without a code are skipped.
//  2. Dedupe collapses rows sharing a code; the last row wins.
//  3. Reconcile merges the batch into the collection (upsert by code) or
//     replaces the collection outright.
//
// Every function here is pure: it takes a snapshot and returns a new one
// together with a Plan describing what changed. Persisting the result is the
// caller's job, normally inside a txn.Run unit.
package reconcile
