// Package publish uploads built datasets to shared storage so consumers
// can read them without access to the build machine.
package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

const (
	documentsDir     = "documents"
	summaryFilename  = "summary.json"
	manifestFilename = "manifest.json"
)

// GCSUploader uploads a built dataset directory to Google Cloud Storage.
type GCSUploader struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
}

// NewGCSUploader creates a new GCS uploader.
// gcsPath should be in the format "gs://bucket/prefix".
func NewGCSUploader(ctx context.Context, gcsPath string) (*GCSUploader, error) {
	bucket, prefix, err := ParseGCSPath(gcsPath)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	return &GCSUploader{
		client: client,
		bucket: client.Bucket(bucket),
		prefix: prefix,
	}, nil
}

// ParseGCSPath parses "gs://bucket/prefix" into bucket and prefix.
func ParseGCSPath(gcsPath string) (bucket, prefix string, err error) {
	if !strings.HasPrefix(gcsPath, "gs://") {
		return "", "", fmt.Errorf("invalid GCS path: must start with gs://")
	}

	path := strings.TrimPrefix(gcsPath, "gs://")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) == 0 || parts[0] == "" {
		return "", "", fmt.Errorf("invalid GCS path: missing bucket name")
	}

	bucket = parts[0]
	if len(parts) > 1 {
		prefix = strings.TrimSuffix(parts[1], "/")
		if prefix != "" {
			prefix += "/"
		}
	}

	return bucket, prefix, nil
}

// Upload uploads a built dataset from localDir to GCS: batch files and
// manifest first, stale batch cleanup after, and the summary strictly
// last. Consumers treat a dataset without a summary as incomplete, so a
// reader can never observe a half-published dataset as complete.
func (u *GCSUploader) Upload(ctx context.Context, localDir string, progress func(uploaded, total int)) error {
	batchesDir := filepath.Join(localDir, documentsDir)

	entries, err := os.ReadDir(batchesDir)
	if err != nil {
		return fmt.Errorf("reading documents directory: %w", err)
	}

	// Track uploaded batch names for cleanup.
	uploadedBatches := make(map[string]bool)

	var uploaded int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		localPath := filepath.Join(batchesDir, entry.Name())
		key := u.prefix + documentsDir + "/" + entry.Name()

		if err := u.uploadFile(ctx, localPath, key); err != nil {
			return fmt.Errorf("uploading %s: %w", entry.Name(), err)
		}

		uploadedBatches[entry.Name()] = true
		uploaded++
		if progress != nil {
			progress(uploaded, len(entries))
		}
	}

	manifestPath := filepath.Join(localDir, manifestFilename)
	if _, err := os.Stat(manifestPath); err == nil {
		if err := u.uploadFile(ctx, manifestPath, u.prefix+manifestFilename); err != nil {
			return fmt.Errorf("uploading manifest: %w", err)
		}
	}

	// Clean up batches from a previous publish that the new build no
	// longer produces.
	if err := u.cleanStaleBatches(ctx, uploadedBatches); err != nil {
		// Stale batches are harmless; the manifest bounds what readers scan.
		fmt.Printf("Warning: failed to clean stale batches: %v\n", err)
	}

	summaryPath := filepath.Join(localDir, summaryFilename)
	if _, err := os.Stat(summaryPath); err != nil {
		return fmt.Errorf("dataset has no summary, refusing to publish a partial run: %w", err)
	}
	if err := u.uploadFile(ctx, summaryPath, u.prefix+summaryFilename); err != nil {
		return fmt.Errorf("uploading summary: %w", err)
	}

	return nil
}

// cleanStaleBatches deletes batch files in GCS that aren't in the new build.
func (u *GCSUploader) cleanStaleBatches(ctx context.Context, currentBatches map[string]bool) error {
	prefix := u.prefix + documentsDir + "/"
	it := u.bucket.Objects(ctx, &storage.Query{Prefix: prefix})

	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("listing objects: %w", err)
		}

		name := strings.TrimPrefix(attrs.Name, prefix)
		if currentBatches[name] {
			continue
		}

		if err := u.bucket.Object(attrs.Name).Delete(ctx); err != nil {
			return fmt.Errorf("deleting stale batch %s: %w", attrs.Name, err)
		}
	}

	return nil
}

// uploadFile uploads a single file to GCS.
func (u *GCSUploader) uploadFile(ctx context.Context, localPath, key string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer file.Close()

	obj := u.bucket.Object(key)
	writer := obj.NewWriter(ctx)

	if _, err := io.Copy(writer, file); err != nil {
		writer.Close()
		return err
	}

	return writer.Close()
}

// Close releases resources.
func (u *GCSUploader) Close() error {
	return u.client.Close()
}
