package checks

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"equipment-manager/core/storage"
	"equipment-manager/core/store"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// StorageReport is the result of the storage layout check.
type StorageReport struct {
	Bucket        string `json:"bucket"`
	Prefix        string `json:"prefix"`
	BucketExists  bool   `json:"bucket_exists"`
	PrefixPresent bool   `json:"prefix_present"`
	Status        string `json:"status"` // "ok", "error"
}

// CheckStorage verifies that the bucket exists and holds the image prefix.
func CheckStorage(ctx context.Context, client storage.Client, cfg storage.Config) (*StorageReport, error) {
	report := &StorageReport{
		Bucket: cfg.Bucket,
		Prefix: prefixOf(cfg),
		Status: "ok",
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	report.BucketExists = exists
	if !exists {
		report.Status = "error"
		return report, nil
	}

	opts := minio.ListObjectsOptions{
		Prefix:    report.Prefix,
		Recursive: false,
		MaxKeys:   1,
	}
	for obj := range client.ListObjects(ctx, cfg.Bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", report.Prefix, obj.Err)
		}
		report.PrefixPresent = true
		break
	}
	if !report.PrefixPresent {
		report.Status = "error"
	}
	return report, nil
}

// FixStorage creates whatever CheckStorage found missing: the bucket and
// an empty marker object for the image prefix.
func FixStorage(ctx context.Context, client storage.Client, cfg storage.Config, logger *zap.Logger, report *StorageReport) error {
	if !report.BucketExists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			logger.Error("Failed to create bucket", zap.String("bucket", cfg.Bucket), zap.Error(err))
			return err
		}
		logger.Info("Created bucket", zap.String("bucket", cfg.Bucket))
		report.BucketExists = true
	}

	if !report.PrefixPresent {
		_, err := client.PutObject(ctx, cfg.Bucket, report.Prefix, bytes.NewReader([]byte{}), 0, minio.PutObjectOptions{})
		if err != nil {
			logger.Error("Failed to create image prefix", zap.String("prefix", report.Prefix), zap.Error(err))
			return err
		}
		logger.Info("Created image prefix", zap.String("prefix", report.Prefix))
		report.PrefixPresent = true
	}

	report.Status = "ok"
	return nil
}

// ImageReport compares the image paths recorded on assets with the objects
// actually stored.
type ImageReport struct {
	Referenced int `json:"referenced"`
	Stored     int `json:"stored"`
	// Missing lists codes of assets whose image object does not exist.
	Missing []string `json:"missing"`
	// Orphaned lists stored image files no asset points at.
	Orphaned []string `json:"orphaned"`
	// External lists codes of assets whose image path is not served from storage.
	External []string `json:"external"`
	Status   string   `json:"status"` // "ok", "warning"
}

// CheckImages lists the image prefix once and matches it against assets.
func CheckImages(ctx context.Context, client storage.Client, cfg storage.Config, assets []store.Record) (*ImageReport, error) {
	prefix := prefixOf(cfg)
	stored := make(map[string]bool)

	opts := minio.ListObjectsOptions{Prefix: prefix, Recursive: true}
	for obj := range client.ListObjects(ctx, cfg.Bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, obj.Err)
		}
		file := strings.TrimPrefix(obj.Key, prefix)
		if file == "" {
			continue
		}
		stored[file] = false
	}

	report := &ImageReport{
		Stored:   len(stored),
		Missing:  []string{},
		Orphaned: []string{},
		External: []string{},
		Status:   "ok",
	}

	for _, a := range assets {
		path := a.Text(store.FieldImagePath)
		if path == "" {
			continue
		}
		report.Referenced++

		file, ok := cfg.FileFromPublicPath(path)
		if !ok {
			report.External = append(report.External, a.Code())
			continue
		}
		if _, ok := stored[file]; !ok {
			report.Missing = append(report.Missing, a.Code())
			continue
		}
		stored[file] = true
	}

	for file, used := range stored {
		if !used {
			report.Orphaned = append(report.Orphaned, file)
		}
	}
	sort.Strings(report.Orphaned)

	if len(report.Missing) > 0 || len(report.Orphaned) > 0 {
		report.Status = "warning"
	}
	return report, nil
}

func prefixOf(cfg storage.Config) string {
	p := strings.Trim(cfg.ImagePrefix, "/")
	if p == "" {
		p = "images"
	}
	return p + "/"
}
