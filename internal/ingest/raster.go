package ingest

import (
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"os"

	"github.com/nfnt/resize"
)

// normalizeImage decodes the image at src, shrinks it so neither side
// exceeds maxDim and writes it to dst as a JPEG.
func normalizeImage(src, dst string, maxDim, quality int) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}
	return writeJPEG(dst, fitWithin(img, maxDim), quality)
}

// fitWithin keeps the aspect ratio. Images already inside the bound are
// returned untouched.
func fitWithin(img image.Image, maxDim int) image.Image {
	if maxDim <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxDim && b.Dy() <= maxDim {
		return img
	}
	return resize.Thumbnail(uint(maxDim), uint(maxDim), img, resize.Lanczos3)
}

func writeJPEG(path string, img image.Image, quality int) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create page image: %w", err)
	}
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: quality}); err != nil {
		out.Close()
		os.Remove(path)
		return fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return out.Close()
}
