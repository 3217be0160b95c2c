package s3watch

import (
	"context"
	"errors"
	"time"

	"github.com/nlysenko/datahub-gateway/apperr"
	"github.com/nlysenko/datahub-gateway/store"
)

// RecordingIngestor files each pulled object as an ingestion record under
// the configured platform folder, tagged with its source.
type RecordingIngestor struct {
	records  store.IngestionStore
	bucket   string
	folderID string
}

func NewRecordingIngestor(records store.IngestionStore, bucket, folderID string) *RecordingIngestor {
	return &RecordingIngestor{
		records:  records,
		bucket:   bucket,
		folderID: folderID,
	}
}

func (i *RecordingIngestor) Ingest(ctx context.Context, key, path string, size int64) error {
	err := i.records.Record(ctx, store.IngestionRecord{
		ObjectKey:  key,
		Bucket:     i.bucket,
		FolderID:   i.folderID,
		FileSource: "s3",
		Size:       size,
		IngestedAt: time.Now().Unix(),
	})
	// An object re-listed before its delete settled was already ingested;
	// treat that as done so the delete is retried.
	if errors.Is(err, apperr.ErrObjectConflict) {
		return nil
	}
	return err
}
