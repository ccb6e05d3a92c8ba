package storage_test

import (
	"errors"
	"fmt"
	"testing"

	"equipment-manager/core/storage"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
)

func TestNewClient(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    false,
			Bucket:    "test-bucket",
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTP", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "http://localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTPS", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "https://s3.amazonaws.com",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    true,
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestImageFile(t *testing.T) {
	tests := []struct {
		id, uploaded, want string
	}{
		{"A-1F2E3D", "photo.PNG", "A-1F2E3D.png"},
		{"A-1F2E3D", "photo", "A-1F2E3D.jpg"},
		{"../etc/x", "a.jpeg", "___etc_x.jpeg"},
		{"A-1", "weird.p$g", "A-1.jpg"},
		{"A-1", "long.extension", "A-1.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.uploaded, func(t *testing.T) {
			assert.Equal(t, tt.want, storage.ImageFile(tt.id, tt.uploaded))
		})
	}
}

func TestConfigPaths(t *testing.T) {
	cfg := storage.Config{ImagePrefix: "images/", PublicPrefix: "/assets/images"}

	assert.Equal(t, "images/A-1.jpg", cfg.ObjectKey("A-1.jpg"))
	assert.Equal(t, "/assets/images/A-1.jpg", cfg.PublicPath("A-1.jpg"))

	file, ok := cfg.FileFromPublicPath("/assets/images/A-1.jpg")
	assert.True(t, ok)
	assert.Equal(t, "A-1.jpg", file)

	_, ok = cfg.FileFromPublicPath("/elsewhere/A-1.jpg")
	assert.False(t, ok)
	_, ok = cfg.FileFromPublicPath("/assets/images/a/b.jpg")
	assert.False(t, ok)
}

func TestNewClientRequiresEndpoint(t *testing.T) {
	_, err := storage.NewClient(storage.Config{})
	assert.ErrorContains(t, err, "endpoint")
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, storage.IsNotFound(fmt.Errorf("%w: images/x.jpg", storage.ErrObjectNotFound)))
	assert.True(t, storage.IsNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.True(t, storage.IsNotFound(minio.ErrorResponse{Code: "NoSuchBucket"}))
	assert.False(t, storage.IsNotFound(minio.ErrorResponse{Code: "AccessDenied"}))
	assert.False(t, storage.IsNotFound(errors.New("timeout")))
}
