package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"catalog-sync/core/storage"
	"catalog-sync/core/utils"
	"catalog-sync/feature/catalog"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const (
	snapshotPrefix = "snapshots/"
	reportPrefix   = "reports/"
)

// ErrNotFound is returned when a snapshot or report does not exist.
var ErrNotFound = errors.New("snapshot not found")

// CategorySnapshot is the stored scrape of one category.
type CategorySnapshot struct {
	RunID     string                  `json:"run_id"`
	URL       string                  `json:"url"`
	Category  string                  `json:"category"`
	ScrapedAt time.Time               `json:"scraped_at"`
	Records   []catalog.ProductRecord `json:"records"`
}

// RunRef identifies a stored run report.
type RunRef struct {
	ID       string    `json:"id"`
	StoredAt time.Time `json:"stored_at"`
}

// Archive stores snapshots and reports. It observes runs through catalog.RunObserver.
type Archive struct {
	catalog.NopObserver

	client    storage.Client
	bucket    string
	retention int
	logger    *zap.Logger
}

var _ catalog.RunObserver = (*Archive)(nil)

// NewArchive creates an archive in bucket. When retention is positive only the
// newest retention runs are kept after each run.
func NewArchive(client storage.Client, bucket string, retention int, logger *zap.Logger) *Archive {
	return &Archive{client: client, bucket: bucket, retention: retention, logger: logger}
}

// SnapshotObject returns the object name of a category snapshot.
func SnapshotObject(runID, url string) string {
	return snapshotPrefix + runID + "/" + utils.Slugify(url) + ".json"
}

// ReportObject returns the object name of a run report.
func ReportObject(runID string) string {
	return reportPrefix + runID + ".json"
}

// CategoryScraped stores the sanitized records of a category.
func (a *Archive) CategoryScraped(ctx context.Context, runID string, res *catalog.CategorySyncResult, records []catalog.ProductRecord) error {
	snap := CategorySnapshot{
		RunID:     runID,
		URL:       res.URL,
		Category:  res.CategoryName,
		ScrapedAt: time.Now().UTC(),
		Records:   records,
	}
	return a.putJSON(ctx, SnapshotObject(runID, res.URL), snap)
}

// RunFinished stores the run report and prunes old runs.
func (a *Archive) RunFinished(ctx context.Context, run *catalog.RunSummary) error {
	if err := a.putJSON(ctx, ReportObject(run.ID), run); err != nil {
		return err
	}
	if a.retention > 0 {
		removed, err := a.Prune(ctx, a.retention)
		if err != nil {
			return fmt.Errorf("pruning snapshots: %w", err)
		}
		if removed > 0 {
			a.logger.Info("Pruned old snapshots", zap.Int("runs", removed))
		}
	}
	return nil
}

// LoadSnapshot reads the snapshot of url stored by run runID.
func (a *Archive) LoadSnapshot(ctx context.Context, runID, url string) (*CategorySnapshot, error) {
	var snap CategorySnapshot
	if err := a.getJSON(ctx, SnapshotObject(runID, url), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// LoadReport reads the report of run runID.
func (a *Archive) LoadReport(ctx context.Context, runID string) (*catalog.RunSummary, error) {
	var run catalog.RunSummary
	if err := a.getJSON(ctx, ReportObject(runID), &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// Runs lists stored run reports, newest first.
func (a *Archive) Runs(ctx context.Context) ([]RunRef, error) {
	var runs []RunRef
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: reportPrefix}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("listing reports: %w", obj.Err)
		}
		id := strings.TrimSuffix(strings.TrimPrefix(obj.Key, reportPrefix), ".json")
		if id == "" || strings.Contains(id, "/") {
			continue
		}
		runs = append(runs, RunRef{ID: id, StoredAt: obj.LastModified})
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].StoredAt.Equal(runs[j].StoredAt) {
			return runs[i].ID > runs[j].ID
		}
		return runs[i].StoredAt.After(runs[j].StoredAt)
	})
	return runs, nil
}

// Prune removes the snapshots and reports of all but the newest keep runs.
// It returns the number of runs removed.
func (a *Archive) Prune(ctx context.Context, keep int) (int, error) {
	runs, err := a.Runs(ctx)
	if err != nil {
		return 0, err
	}
	if keep < 0 || len(runs) <= keep {
		return 0, nil
	}
	stale := runs[keep:]

	var objects []minio.ObjectInfo
	for _, run := range stale {
		prefix := snapshotPrefix + run.ID + "/"
		for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
			if obj.Err != nil {
				return 0, fmt.Errorf("listing %s: %w", prefix, obj.Err)
			}
			objects = append(objects, obj)
		}
		objects = append(objects, minio.ObjectInfo{Key: ReportObject(run.ID)})
	}

	objectsCh := make(chan minio.ObjectInfo, len(objects))
	for _, obj := range objects {
		objectsCh <- obj
	}
	close(objectsCh)

	var errs []error
	for rerr := range a.client.RemoveObjects(ctx, a.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		errs = append(errs, fmt.Errorf("removing %s: %w", rerr.ObjectName, rerr.Err))
	}
	if len(errs) > 0 {
		return 0, errors.Join(errs...)
	}
	return len(stale), nil
}

func (a *Archive) putJSON(ctx context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	_, err = a.client.PutObject(ctx, a.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", name, err)
	}
	return nil
}

func (a *Archive) getJSON(ctx context.Context, name string, v any) error {
	obj, err := a.client.GetObject(ctx, a.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return wrapGetError(name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return wrapGetError(name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}

func wrapGetError(name string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return fmt.Errorf("reading %s: %w", name, err)
}
