// Package history keeps a ledger of sync runs in the SQL database.
//
// Store observes the run orchestrator and writes one sync_runs row per run
// and one sync_category_results row per category. The HTTP handler exposes
// the ledger under /runs.
package history
