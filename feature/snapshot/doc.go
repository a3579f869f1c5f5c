// Package snapshot archives what each run scraped and how it ended.
//
// Every category scrape is stored as snapshots/<run id>/<url slug>.json and
// every finished run as reports/<run id>.json in the configured bucket. A
// ReplaySource reads the snapshots of an earlier run back, so a run can be
// repeated against the store without crawling the supplier again.
package snapshot
