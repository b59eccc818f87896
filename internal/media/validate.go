package media

import (
	"fmt"
	"net/http"

	apperrors "github.com/cijene-me/cijene-api/pkg/util"
)

// DefaultMaxImageBytes caps product image uploads.
const DefaultMaxImageBytes int64 = 5 * 1024 * 1024

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// ValidateImage checks the content type against jpeg/png/gif and the size against max.
func ValidateImage(contentType string, size, max int64) error {
	if max <= 0 {
		max = DefaultMaxImageBytes
	}
	if _, ok := imageExtensions[contentType]; !ok {
		return apperrors.NewValidationError("unsupported image type", map[string]any{
			"file": fmt.Sprintf("content type %q is not one of image/jpeg, image/png, image/gif", contentType),
		})
	}
	if size <= 0 {
		return apperrors.NewValidationError("empty file", map[string]any{"file": "file is empty"})
	}
	if size > max {
		return apperrors.NewValidationError("file too large", map[string]any{
			"file": fmt.Sprintf("file exceeds %d bytes", max),
		})
	}
	return nil
}

// SniffContentType detects the type from the first bytes of the file so a client
// cannot pass off arbitrary data under an image content type.
func SniffContentType(head []byte) string {
	return http.DetectContentType(head)
}

func extensionFor(contentType string) string {
	return imageExtensions[contentType]
}
