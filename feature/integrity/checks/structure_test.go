package checks

import (
	"context"
	"errors"
	"testing"

	"catalog-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func listing(objects ...minio.ObjectInfo) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(objects))
	for _, o := range objects {
		ch <- o
	}
	close(ch)
	return ch
}

func prefixIs(prefix string) any {
	return mock.MatchedBy(func(opts minio.ListObjectsOptions) bool { return opts.Prefix == prefix })
}

func TestCheckStructure(t *testing.T) {
	t.Run("Bucket Missing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "archive").Return(false, nil)

		_, err := CheckStructure(context.Background(), mockClient, "archive")
		assert.ErrorContains(t, err, "does not exist")
	})

	t.Run("Bucket Error", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "archive").Return(false, errors.New("denied"))

		_, err := CheckStructure(context.Background(), mockClient, "archive")
		assert.ErrorContains(t, err, "denied")
	})

	t.Run("Reports Missing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "archive").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "archive", prefixIs("snapshots/")).
			Return(listing(minio.ObjectInfo{Key: "snapshots/run-1/"}))
		mockClient.On("ListObjects", mock.Anything, "archive", prefixIs("reports/")).
			Return(listing())

		missing, err := CheckStructure(context.Background(), mockClient, "archive")
		require.NoError(t, err)
		assert.Equal(t, []string{"reports"}, missing)
	})

	t.Run("List Error", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "archive").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "archive", mock.Anything).
			Return(listing(minio.ObjectInfo{Err: errors.New("timeout")}))

		_, err := CheckStructure(context.Background(), mockClient, "archive")
		assert.ErrorContains(t, err, "timeout")
	})
}

func TestFixStructure(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("PutObject", mock.Anything, "archive", "reports/", mock.Anything, int64(0), mock.Anything).
		Return(minio.UploadInfo{}, nil)
	mockClient.On("PutObject", mock.Anything, "archive", "snapshots/", mock.Anything, int64(0), mock.Anything).
		Return(minio.UploadInfo{}, errors.New("read only"))

	err := FixStructure(context.Background(), mockClient, "archive", zap.NewNop(), []string{"reports", "snapshots/"})
	assert.ErrorContains(t, err, "read only")
	mockClient.AssertNumberOfCalls(t, "PutObject", 2)
}
