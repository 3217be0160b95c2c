package s3watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3Types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/require"

	"github.com/nlysenko/datahub-gateway/test/mocks"
)

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string]string
}

func newFakeBucket(objects map[string]string) *fakeBucket {
	return &fakeBucket{objects: objects}
}

func (b *fakeBucket) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := &s3.ListObjectsV2Output{}
	for key, body := range b.objects {
		out.Contents = append(out.Contents, s3Types.Object{
			Key:  aws.String(key),
			Size: aws.Int64(int64(len(body))),
		})
	}
	return out, nil
}

func (b *fakeBucket) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	body, ok := b.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &s3Types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: aws.Int64(int64(len(body))),
	}, nil
}

func (b *fakeBucket) DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := &s3.DeleteObjectsOutput{}
	for _, obj := range params.Delete.Objects {
		key := aws.ToString(obj.Key)
		delete(b.objects, key)
		out.Deleted = append(out.Deleted, s3Types.DeletedObject{Key: aws.String(key)})
	}
	return out, nil
}

func (b *fakeBucket) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTickIngestsAndDrainsBucket(t *testing.T) {
	bucket := newFakeBucket(map[string]string{
		"drop/data.csv": "a,b,c\n1,2,3\n",
	})
	records := mocks.NewMemoryIngestionStore()
	ingestor := NewRecordingIngestor(records, "test-bucket", "folder-1")

	basePath := t.TempDir()
	w := NewWatcher(bucket, ingestor, testLogger(), "test-bucket", basePath, time.Second)

	require.NoError(t, w.tick(context.Background()))

	recs := records.Records()
	require.Len(t, recs, 1)
	require.Equal(t, "drop/data.csv", recs[0].ObjectKey)
	require.Equal(t, "test-bucket", recs[0].Bucket)
	require.Equal(t, "folder-1", recs[0].FolderID)
	require.Equal(t, "s3", recs[0].FileSource)
	require.Equal(t, int64(len("a,b,c\n1,2,3\n")), recs[0].Size)

	require.Equal(t, 0, bucket.count())

	// The downloaded copy is cleaned up once ingestion is done.
	entries, err := os.ReadDir(basePath)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestTickRetriesDeleteOnDuplicate(t *testing.T) {
	bucket := newFakeBucket(map[string]string{
		"drop/data.csv": "payload",
	})
	records := mocks.NewMemoryIngestionStore()
	ingestor := NewRecordingIngestor(records, "test-bucket", "folder-1")

	w := NewWatcher(bucket, ingestor, testLogger(), "test-bucket", t.TempDir(), time.Second)

	require.NoError(t, w.tick(context.Background()))
	require.Len(t, records.Records(), 1)

	// The same object reappearing before its delete settled was already
	// ingested; the second tick only needs to delete it again.
	bucket.mu.Lock()
	bucket.objects["drop/data.csv"] = "payload"
	bucket.mu.Unlock()

	require.NoError(t, w.tick(context.Background()))
	require.Len(t, records.Records(), 1)
	require.Equal(t, 0, bucket.count())
}

func TestRunStopsOnCancel(t *testing.T) {
	bucket := newFakeBucket(map[string]string{})
	w := NewWatcher(bucket, NewRecordingIngestor(mocks.NewMemoryIngestionStore(), "b", "f"),
		testLogger(), "b", t.TempDir(), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
