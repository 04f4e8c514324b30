// Package media persists uploaded screenshots and hands back an opaque,
// dereferenceable reference for them.
package media

import (
	"context"
	"fmt"
	"io"

	"github.com/oggyb/yourcode/internal/config"
)

// Store saves an object under key and returns its public reference.
type Store interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// NewFromConfig builds the configured backend.
func NewFromConfig(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Media.Backend {
	case "", "local":
		return NewLocalStore(cfg.Media.LocalDir, cfg.Media.PublicURL)
	case "minio", "s3":
		return NewMinioStore(ctx, MinioOptions{
			Endpoint:  cfg.Media.MinioEndpoint,
			AccessKey: cfg.Media.MinioAccessKey,
			SecretKey: cfg.Media.MinioSecretKey,
			Bucket:    cfg.Media.MinioBucket,
			UseSSL:    cfg.Media.MinioUseSSL,
			PublicURL: cfg.Media.PublicURL,
		})
	default:
		return nil, fmt.Errorf("unsupported media backend %q", cfg.Media.Backend)
	}
}
