package snapshot

import (
	"context"
	"fmt"

	"catalog-sync/feature/catalog"
)

// ReplaySource serves the snapshots of an earlier run as a catalog.Source.
type ReplaySource struct {
	archive *Archive
	runID   string
}

var _ catalog.Source = (*ReplaySource)(nil)

// NewReplaySource creates a source replaying run runID.
func NewReplaySource(archive *Archive, runID string) *ReplaySource {
	return &ReplaySource{archive: archive, runID: runID}
}

// Login checks that the replayed run has a report.
func (r *ReplaySource) Login(ctx context.Context) error {
	if _, err := r.archive.LoadReport(ctx, r.runID); err != nil {
		return fmt.Errorf("replaying run %s: %w", r.runID, err)
	}
	return nil
}

// ScrapeCategory returns the stored scrape of url.
func (r *ReplaySource) ScrapeCategory(ctx context.Context, url string) (string, []catalog.ProductRecord, error) {
	snap, err := r.archive.LoadSnapshot(ctx, r.runID, url)
	if err != nil {
		return "", nil, err
	}
	return snap.Category, snap.Records, nil
}

// URLs returns the category URLs of the replayed run in their original order.
func (r *ReplaySource) URLs(ctx context.Context) ([]string, error) {
	run, err := r.archive.LoadReport(ctx, r.runID)
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(run.Categories))
	for _, c := range run.Categories {
		urls = append(urls, c.URL)
	}
	return urls, nil
}

func (r *ReplaySource) Close() error { return nil }
