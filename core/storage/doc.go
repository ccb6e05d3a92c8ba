// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind a small interface used for equipment
// images. Both AWS S3 and self-hosted MinIO instances are supported.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (see core/storage/mocks).
//
//   - BucketExists / MakeBucket: integrity check and its fix.
//   - PutObject: image upload.
//   - GetObject: image serving.
//   - ListObjects: integrity check of the image prefix.
//   - RemoveObject: cleanup when an asset or its image is replaced.
//
// # Keys and Paths
//
// An image of asset A-1F2E3D uploaded as photo.png is stored under
// ImagePrefix + "A-1F2E3D.png" and recorded on the asset as
// PublicPrefix + "A-1F2E3D.png".
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, config.Bucket)
package storage
