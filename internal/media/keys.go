package media

import (
	"fmt"

	"github.com/thumblifyapp/thumblify-server/internal/normalize"
)

// ObjectKey returns the storage key for a thumbnail's original image.
// The extension follows the content type the provider reported.
func ObjectKey(folder, thumbID, mimeType string) string {
	return fmt.Sprintf("%s/%s.%s", folder, thumbID, extensionFor(mimeType))
}

// PreviewKey returns the storage key for a thumbnail's preview image.
// Previews are always JPEG.
func PreviewKey(folder, thumbID string) string {
	return fmt.Sprintf("%s/%s_preview.jpg", folder, thumbID)
}

// DownloadFilename builds the filename suggested to browsers when a
// user downloads a thumbnail image.
func DownloadFilename(title, mimeType string) string {
	slug := normalize.Slug(title)
	if slug == "" {
		slug = "thumbnail"
	}
	return fmt.Sprintf("%s.%s", slug, extensionFor(mimeType))
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	default:
		return "png"
	}
}
