// Package photo stores receipt and item photos. Rows only keep the object
// name; the bytes live on the local filesystem or in an S3 bucket.
package photo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"erp-backend/internal/config"
)

var (
	ErrInvalidName = errors.New("invalid photo name")
	ErrNotFound    = errors.New("photo not found")
)

type Store interface {
	Put(ctx context.Context, name string, r io.Reader, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, name string) error
	// Exists reports false for names that are not stored, invalid ones included.
	Exists(ctx context.Context, name string) (bool, error)
}

// Open picks the driver named by PHOTO_DRIVER.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.PhotoDriver {
	case "s3":
		return NewS3Store(ctx, S3Config{
			Bucket:    cfg.PhotoS3Bucket,
			Region:    cfg.PhotoS3Region,
			Endpoint:  cfg.PhotoS3Endpoint,
			PathStyle: cfg.PhotoS3PathStyle,
		})
	case "fs", "":
		return NewFileStore(cfg.PhotoPath)
	}
	return nil, fmt.Errorf("unknown photo driver %q", cfg.PhotoDriver)
}

// cleanName rejects names that could escape the store root.
func cleanName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrInvalidName
	}
	if strings.Contains(name, "..") || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return "", ErrInvalidName
	}
	clean := path.Clean(name)
	if clean == "." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidName
	}
	return clean, nil
}
