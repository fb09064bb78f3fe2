package storage

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// ImageProcessor bounds staged images before they leave the service.
type ImageProcessor struct {
	maxWidth  int
	maxHeight int
}

func NewImageProcessor(maxWidth, maxHeight int) *ImageProcessor {
	return &ImageProcessor{maxWidth: maxWidth, maxHeight: maxHeight}
}

// Normalize shrinks the image at path to fit the configured box, keeping
// its aspect ratio. Images already inside the box are left untouched.
func (p *ImageProcessor) Normalize(path string) error {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("%w: decode image: %v", ErrInvalidFile, err)
	}
	b := img.Bounds()
	if b.Dx() <= p.maxWidth && b.Dy() <= p.maxHeight {
		return nil
	}
	resized := imaging.Fit(img, p.maxWidth, p.maxHeight, imaging.Lanczos)
	if err := imaging.Save(resized, path); err != nil {
		return fmt.Errorf("save resized image: %w", err)
	}
	return nil
}
