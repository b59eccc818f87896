package media

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/cijene-me/cijene-api/internal/config"
)

type cloudinaryAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// CloudinaryStore keeps images on Cloudinary. Keys are Cloudinary public ids.
type CloudinaryStore struct {
	api    cloudinaryAPI
	folder string
}

func NewCloudinaryStore(cfg config.MediaConfig) (*CloudinaryStore, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, fmt.Errorf("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required")
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryStore{api: &cld.Upload, folder: cfg.CloudinaryFolder}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, key, _ string, r io.Reader, _ int64) (Object, error) {
	res, err := s.api.Upload(ctx, r, uploader.UploadParams{
		PublicID: key,
		Folder:   s.folder,
	})
	if err != nil {
		return Object{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return Object{}, fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	return Object{Key: res.PublicID, URL: res.SecureURL}, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, key string) error {
	res, err := s.api.Destroy(ctx, uploader.DestroyParams{PublicID: key})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", res.Error.Message)
	}
	return nil
}
