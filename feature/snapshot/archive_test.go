package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"catalog-sync/core/storage/mocks"
	"catalog-sync/feature/catalog"

	"github.com/minio/minio-go/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const bucket = "catalog-sync"

func objectsChan(objs ...minio.ObjectInfo) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(objs))
	for _, o := range objs {
		ch <- o
	}
	close(ch)
	return ch
}

func jsonBody(t *testing.T, v any) io.ReadCloser {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return io.NopCloser(bytes.NewReader(data))
}

func TestObjectNames(t *testing.T) {
	assert.Equal(t, "snapshots/run-1/https-supplier-cl-notebooks.json", SnapshotObject("run-1", "https://supplier.cl/notebooks"))
	assert.Equal(t, "reports/run-1.json", ReportObject("run-1"))
}

func TestArchive_CategoryScraped(t *testing.T) {
	client := new(mocks.Client)
	var stored CategorySnapshot

	client.On("PutObject", mock.Anything, bucket, "snapshots/run-1/https-supplier-cl-notebooks.json", mock.Anything, mock.Anything, minio.PutObjectOptions{ContentType: "application/json"}).
		Run(func(args mock.Arguments) {
			data, err := io.ReadAll(args.Get(3).(io.Reader))
			require.NoError(t, err)
			assert.Equal(t, int64(len(data)), args.Get(4).(int64))
			require.NoError(t, json.Unmarshal(data, &stored))
		}).
		Return(minio.UploadInfo{}, nil)

	a := NewArchive(client, bucket, 0, zap.NewNop())
	res := &catalog.CategorySyncResult{URL: "https://supplier.cl/notebooks", CategoryName: "Notebooks"}
	records := []catalog.ProductRecord{{SKU: "A", Name: "Alpha", NetPrice: decimal.RequireFromString("10.50"), InStock: true}}

	require.NoError(t, a.CategoryScraped(context.Background(), "run-1", res, records))

	assert.Equal(t, "run-1", stored.RunID)
	assert.Equal(t, "Notebooks", stored.Category)
	require.Len(t, stored.Records, 1)
	assert.True(t, stored.Records[0].NetPrice.Equal(decimal.RequireFromString("10.5")))
	client.AssertExpectations(t)
}

func TestArchive_UploadError(t *testing.T) {
	client := new(mocks.Client)
	client.On("PutObject", mock.Anything, bucket, "reports/run-1.json", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("access denied"))

	a := NewArchive(client, bucket, 0, zap.NewNop())
	err := a.RunFinished(context.Background(), &catalog.RunSummary{ID: "run-1"})
	assert.ErrorContains(t, err, "uploading reports/run-1.json")
}

func TestArchive_RunFinishedPrunes(t *testing.T) {
	client := new(mocks.Client)
	now := time.Now()

	client.On("PutObject", mock.Anything, bucket, "reports/new.json", mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil)
	client.On("ListObjects", mock.Anything, bucket, minio.ListObjectsOptions{Prefix: "reports/"}).Return(objectsChan(
		minio.ObjectInfo{Key: "reports/old.json", LastModified: now.Add(-2 * time.Hour)},
		minio.ObjectInfo{Key: "reports/new.json", LastModified: now},
		minio.ObjectInfo{Key: "reports/mid.json", LastModified: now.Add(-time.Hour)},
	))
	client.On("ListObjects", mock.Anything, bucket, minio.ListObjectsOptions{Prefix: "snapshots/old/", Recursive: true}).Return(objectsChan(
		minio.ObjectInfo{Key: "snapshots/old/a.json"},
		minio.ObjectInfo{Key: "snapshots/old/b.json"},
	))

	var removed []string
	client.On("RemoveObjects", mock.Anything, bucket, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			for obj := range args.Get(2).(<-chan minio.ObjectInfo) {
				removed = append(removed, obj.Key)
			}
		}).
		Return(nil)

	a := NewArchive(client, bucket, 2, zap.NewNop())
	require.NoError(t, a.RunFinished(context.Background(), &catalog.RunSummary{ID: "new"}))

	assert.Equal(t, []string{"snapshots/old/a.json", "snapshots/old/b.json", "reports/old.json"}, removed)
}

func TestArchive_PruneReportsRemoveErrors(t *testing.T) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, bucket, minio.ListObjectsOptions{Prefix: "reports/"}).Return(objectsChan(
		minio.ObjectInfo{Key: "reports/a.json", LastModified: time.Now()},
		minio.ObjectInfo{Key: "reports/b.json", LastModified: time.Now().Add(-time.Minute)},
	))
	client.On("ListObjects", mock.Anything, bucket, mock.Anything).Return(objectsChan())

	errCh := make(chan minio.RemoveObjectError, 1)
	errCh <- minio.RemoveObjectError{ObjectName: "reports/b.json", Err: errors.New("locked")}
	close(errCh)
	client.On("RemoveObjects", mock.Anything, bucket, mock.Anything, mock.Anything).Return((<-chan minio.RemoveObjectError)(errCh))

	a := NewArchive(client, bucket, 0, zap.NewNop())
	n, err := a.Prune(context.Background(), 1)
	assert.Equal(t, 0, n)
	assert.ErrorContains(t, err, "removing reports/b.json: locked")
}

func TestArchive_Runs(t *testing.T) {
	client := new(mocks.Client)
	now := time.Now()
	client.On("ListObjects", mock.Anything, bucket, mock.Anything).Return(objectsChan(
		minio.ObjectInfo{Key: "reports/b.json", LastModified: now.Add(-time.Hour)},
		minio.ObjectInfo{Key: "reports/a.json", LastModified: now},
		minio.ObjectInfo{Key: "reports/", LastModified: now},
	))

	a := NewArchive(client, bucket, 0, zap.NewNop())
	runs, err := a.Runs(context.Background())
	require.NoError(t, err)

	require.Len(t, runs, 2)
	assert.Equal(t, "a", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)
}

func TestArchive_LoadReportNotFound(t *testing.T) {
	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, bucket, "reports/missing.json", mock.Anything).
		Return(nil, minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist."})

	a := NewArchive(client, bucket, 0, zap.NewNop())
	_, err := a.LoadReport(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplaySource(t *testing.T) {
	client := new(mocks.Client)
	report := catalog.RunSummary{ID: "run-1", Categories: []catalog.CategorySyncResult{
		{URL: "https://supplier.cl/a"},
		{URL: "https://supplier.cl/b"},
	}}
	snap := CategorySnapshot{
		RunID:    "run-1",
		URL:      "https://supplier.cl/a",
		Category: "Alpha",
		Records:  []catalog.ProductRecord{{SKU: "A1"}, {SKU: "A2"}},
	}

	client.On("GetObject", mock.Anything, bucket, "reports/run-1.json", mock.Anything).
		Return(jsonBody(t, report), nil).Once()
	client.On("GetObject", mock.Anything, bucket, "reports/run-1.json", mock.Anything).
		Return(jsonBody(t, report), nil).Once()
	client.On("GetObject", mock.Anything, bucket, SnapshotObject("run-1", "https://supplier.cl/a"), mock.Anything).
		Return(jsonBody(t, snap), nil)
	client.On("GetObject", mock.Anything, bucket, SnapshotObject("run-1", "https://supplier.cl/b"), mock.Anything).
		Return(nil, minio.ErrorResponse{Code: "NoSuchKey"})

	src := NewReplaySource(NewArchive(client, bucket, 0, zap.NewNop()), "run-1")
	ctx := context.Background()

	require.NoError(t, src.Login(ctx))

	urls, err := src.URLs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://supplier.cl/a", "https://supplier.cl/b"}, urls)

	name, records, err := src.ScrapeCategory(ctx, "https://supplier.cl/a")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", name)
	assert.Len(t, records, 2)

	_, _, err = src.ScrapeCategory(ctx, "https://supplier.cl/b")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, src.Close())
}
