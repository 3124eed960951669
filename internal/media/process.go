package media

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png" // Register PNG decoder

	"log/slog"

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/thumblifyapp/thumblify-server/internal/domain"
)

const (
	// blurHashSize is the working size for BlurHash computation.
	// BlurHash is a low-resolution placeholder, so a small thumbnail
	// produces nearly identical results at a fraction of the cost.
	blurHashSize = 64

	// previewMaxEdge caps the long edge of the JPEG preview.
	previewMaxEdge = 320

	previewQuality = 80
)

// Processed holds everything extracted from a generated image.
type Processed struct {
	Meta domain.ImageMeta

	// Preview is a downscaled JPEG, or nil when preview generation
	// failed. Callers treat a missing preview as cosmetic.
	Preview []byte
}

// Process inspects generated image bytes: dimensions, BlurHash, and a
// small JPEG preview. Decode and preview failures are logged and leave
// the corresponding fields zero; size and content type are always set.
// The original bytes are what gets stored, so inspection never blocks
// a generation from completing.
func Process(data []byte, mimeType string, logger *slog.Logger) *Processed {
	out := &Processed{
		Meta: domain.ImageMeta{
			SizeBytes: int64(len(data)),
			MimeType:  mimeType,
		},
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		logger.Warn("failed to decode generated image", "mime_type", mimeType, "error", err)
		return out
	}

	bounds := img.Bounds()
	out.Meta.Width = bounds.Dx()
	out.Meta.Height = bounds.Dy()

	if hash, err := computeBlurHash(img); err != nil {
		logger.Warn("failed to compute blurhash", "error", err)
	} else {
		out.Meta.BlurHash = hash
	}

	if preview, err := encodePreview(img); err != nil {
		logger.Warn("failed to encode preview", "error", err)
	} else {
		out.Preview = preview
	}

	return out
}

// computeBlurHash generates a BlurHash placeholder string. 4x3
// components keep the hash around 30 characters while still reading as
// the image's rough composition.
func computeBlurHash(img image.Image) (string, error) {
	return blurhash.Encode(4, 3, scaleDown(img, blurHashSize, draw.NearestNeighbor))
}

// encodePreview produces the small JPEG shown in list views.
func encodePreview(img image.Image) ([]byte, error) {
	preview := scaleDown(img, previewMaxEdge, draw.CatmullRom)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, preview, &jpeg.Options{Quality: previewQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// scaleDown resizes img so its long edge is at most maxEdge, keeping
// aspect ratio. Images already small enough pass through untouched.
func scaleDown(img image.Image, maxEdge int, scaler draw.Scaler) image.Image {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()

	if srcW <= maxEdge && srcH <= maxEdge {
		return img
	}

	var dstW, dstH int
	if srcW > srcH {
		dstW = maxEdge
		dstH = max(1, (srcH*maxEdge)/srcW)
	} else {
		dstH = maxEdge
		dstW = max(1, (srcW*maxEdge)/srcH)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	scaler.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
