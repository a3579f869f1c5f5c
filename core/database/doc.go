// Package database opens the run history database with GORM and inspects its
// schema.
//
// Connect supports MySQL for shared deployments and SQLite for a single
// host or tests. MissingColumns lets callers that do not auto-migrate check
// that the tables they need are in place.
//
//	db, err := database.Connect(cfg.Database)
//	missing, err := database.MissingColumns(db, "sync_runs", "id", "started_at")
package database
