// Package storage wraps the MinIO client used to archive scrape snapshots and
// run reports in an S3 compatible bucket.
//
// The Client interface lists only the calls the archive makes, so tests can
// substitute core/storage/mocks.
//
//	client, err := storage.NewClient(cfg)
//	err = storage.EnsureBucket(ctx, client, cfg.Bucket, cfg.Region)
package storage
