// Package catalog reconciles a supplier catalog into the storefront.
//
// A run logs into the supplier once, then processes every configured category
// URL in order:
//
//  1. Scrape: the Source yields the category name and its product records.
//     Records without a SKU are dropped here.
//  2. Resolve: the category name is looked up in the storefront. When no
//     category matches, the run continues in degraded mode against the whole
//     store and does not assign categories to new products.
//  3. Reconcile: the records are diffed against the existing products and the
//     resulting creates, updates and archives are applied through the Mutator.
//  4. Report: a CategorySyncResult is recorded and observers are notified.
//
// Only a failed login aborts a run. Category and item failures are counted,
// logged with their URL or SKU, and the run moves on.
package catalog
