// Package reconcile provides a generic engine for keeping a target system in
// line with a freshly collected source set, matched by a stable join key.
//
// The engine is split in two steps so that the decision logic can be tested
// without any I/O:
//
// 1. Diff: builds the key index of the source records and matches it against a
// keyed snapshot of the target, producing three disjoint action sets: creates
// (key only in the source), updates (key in both) and archives (key only in the
// target). Exactly one action is produced per distinct key.
//
// 2. Apply: executes the actions through a Mutator, isolating failures per item.
// Every action yields an Outcome and increments exactly one counter of the
// Result. Apply runs sequentially or on a small fixed worker pool; workers keep
// private counters that are merged when the pool drains.
//
// # Retries
//
// Updates and archives are idempotent and retried up to ApplyOptions.Retries
// times. A create is only retried when the Mutator also implements Deduper and
// confirms that the key is still absent, so a request that timed out after
// succeeding server-side never produces a duplicate.
//
// # Snapshots
//
// SnapshotCache keeps target snapshots per scope for the lifetime of a run,
// collapses concurrent loads with singleflight, and accepts writes made during
// the run so later plans see them.
//
// # Usage Example
//
//	plan := reconcile.Diff(records, existing, func(r Record) string { return r.SKU })
//	res := reconcile.Apply(ctx, plan.Actions(), mutator, reconcile.ApplyOptions{
//	    Concurrency: 4,
//	    Retries:     1,
//	    CallTimeout: 30 * time.Second,
//	})
package reconcile
