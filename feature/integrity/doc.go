// Package integrity checks that the infrastructure a sync run relies on is in place.
//
// # Checks Provided
//
//   - Storage: the snapshot bucket exists and holds the snapshots/ and reports/ folders.
//   - Database: the run history tables have every column the sync writes.
//   - Storefront: the WooCommerce REST API answers and accepts the credentials.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/storage : Runs the storage check (supports ?fix=true).
//   - GET /integrity/database : Runs the history schema check.
//   - GET /integrity/storefront : Probes the storefront.
package integrity
