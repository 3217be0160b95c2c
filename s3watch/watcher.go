// Package s3watch polls an S3 bucket for newly dropped files and pulls them
// into the platform: each object is downloaded, handed to the ingestor,
// deleted from the bucket, and cleaned up locally.
package s3watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3Types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// BucketAPI is the slice of the S3 client the watcher uses.
type BucketAPI interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// Ingestor receives a downloaded file. The file at path is only valid for
// the duration of the call.
type Ingestor interface {
	Ingest(ctx context.Context, key, path string, size int64) error
}

type Watcher struct {
	api      BucketAPI
	ingestor Ingestor
	logger   *slog.Logger

	bucket   string
	basePath string
	interval time.Duration
}

func NewWatcher(api BucketAPI, ingestor Ingestor, logger *slog.Logger, bucket, basePath string, interval time.Duration) *Watcher {
	return &Watcher{
		api:      api,
		ingestor: ingestor,
		logger:   logger.With(slog.String("bucket", bucket)),
		bucket:   bucket,
		basePath: basePath,
		interval: interval,
	}
}

// Run polls until the context is cancelled. A failed tick is logged and the
// next tick proceeds; nothing here is fatal to the process.
func (w *Watcher) Run(ctx context.Context) {
	w.logger.Info("bucket watch started", slog.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("bucket watch stopped")
			return
		case <-ticker.C:
			if err := w.tick(ctx); err != nil {
				w.logger.Error("bucket poll failed", slog.Any("error", err))
			}
		}
	}
}

func (w *Watcher) tick(ctx context.Context) error {
	out, err := w.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(w.bucket),
	})
	if err != nil {
		return err
	}

	for _, obj := range out.Contents {
		key := aws.ToString(obj.Key)
		if err := w.pull(ctx, key); err != nil {
			w.logger.Error("could not ingest object",
				slog.String("key", key),
				slog.Any("error", err),
			)
			continue
		}
		w.logger.Info("ingested object from bucket", slog.String("key", key))
	}

	return nil
}

func (w *Watcher) pull(ctx context.Context, key string) error {
	obj, err := w.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return err
	}
	defer obj.Body.Close()

	path := filepath.Join(w.basePath, filepath.Base(key))
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	size, err := io.Copy(file, obj.Body)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return err
	}
	defer os.Remove(path)

	if err := w.ingestor.Ingest(ctx, key, path, size); err != nil {
		return err
	}

	// The bucket acts as a queue: a successfully ingested object is removed
	// so the next tick does not see it again.
	_, err = w.api.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(w.bucket),
		Delete: &s3Types.Delete{
			Objects: []s3Types.ObjectIdentifier{
				{Key: aws.String(key)},
			},
			Quiet: aws.Bool(false),
		},
	})
	return err
}
