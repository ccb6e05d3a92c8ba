package storage

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// Config holds configuration for the image storage provider.
type Config struct {
	// Endpoint is the URL of the storage service.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket is the name of the bucket holding equipment images.
	Bucket string `mapstructure:"bucket" default:"equipment"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// ImagePrefix is the object key prefix for uploaded images.
	ImagePrefix string `mapstructure:"image_prefix" default:"images/"`
	// PublicPrefix is the URL path images are served under; it is what
	// gets recorded in an asset's imagePath.
	PublicPrefix string `mapstructure:"public_prefix" default:"/assets/images/"`
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// ImageFile derives the stored file name for an asset image from the asset
// id and the uploaded file name. Only the extension of the upload is kept.
func ImageFile(id, uploaded string) string {
	ext := strings.ToLower(filepath.Ext(uploaded))
	if ext == "" || len(ext) > 6 || unsafeName.MatchString(ext[1:]) {
		ext = ".jpg"
	}
	return unsafeName.ReplaceAllString(id, "_") + ext
}

// ObjectKey returns the object key for an image file.
func (c Config) ObjectKey(file string) string {
	return path.Join(strings.Trim(c.ImagePrefix, "/"), file)
}

// PublicPath returns the URL path recorded for an image file.
func (c Config) PublicPath(file string) string {
	prefix := c.PublicPrefix
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + file
}

// FileFromPublicPath reverses PublicPath. ok is false when p was not
// produced by this configuration.
func (c Config) FileFromPublicPath(p string) (string, bool) {
	prefix := c.PublicPrefix
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if !strings.HasPrefix(p, prefix) {
		return "", false
	}
	file := strings.TrimPrefix(p, prefix)
	if file == "" || strings.Contains(file, "/") {
		return "", false
	}
	return file, true
}
