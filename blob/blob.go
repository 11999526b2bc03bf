// Package blob stores uploaded images and hands back the public URL the
// documents reference.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"tourdesk/config"
)

var ErrInvalidKey = errors.New("blob: invalid key")

type Store interface {
	// Put writes r under key and returns the URL clients load it from.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Open picks the driver named in cfg.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.BlobDriver {
	case "", "fs":
		return NewFilesystem(cfg.BlobDir, cfg.BlobBaseURL)
	case "s3":
		base := ""
		if strings.HasPrefix(cfg.BlobBaseURL, "http") {
			base = cfg.BlobBaseURL
		}
		return NewS3(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
			BaseURL:   base,
		})
	default:
		return nil, fmt.Errorf("unknown blob driver %s", cfg.BlobDriver)
	}
}

// cleanKey rejects keys that would escape the store root.
func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
