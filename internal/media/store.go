package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/cijene-me/cijene-api/internal/config"
)

// ErrUnavailable is returned when no media driver is configured.
var ErrUnavailable = errors.New("media store not configured")

// Object identifies a stored file. Key is what Delete expects.
type Object struct {
	Key string
	URL string
}

// Store uploads and removes product images.
type Store interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader, size int64) (Object, error)
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by cfg.Driver. An empty driver yields a nil Store.
func New(ctx context.Context, cfg config.MediaConfig) (Store, error) {
	switch cfg.Driver {
	case "":
		return nil, nil
	case "cloudinary":
		return NewCloudinaryStore(cfg)
	case "s3":
		return NewS3Store(ctx, cfg)
	}
	return nil, fmt.Errorf("unknown media driver %q", cfg.Driver)
}

// ProductImageKey returns a fresh, extension-less key for a product image.
func ProductImageKey(productID int64) string {
	return fmt.Sprintf("product-%d-%s", productID, strings.ReplaceAll(uuid.NewString(), "-", ""))
}
