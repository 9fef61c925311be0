package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
)

// ImageProcessor normalizes card art arriving through JSON imports:
// size-capped, bounded dimensions, deterministic JPEG re-encode.
type ImageProcessor struct {
	MaxBytes int64
	MaxEdge  int
	Quality  int
}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{
		MaxBytes: 5 * 1024 * 1024,
		MaxEdge:  1024,
		Quality:  85,
	}
}

// Validate checks size and format without decoding the full image.
func (p *ImageProcessor) Validate(data []byte) error {
	if int64(len(data)) > p.MaxBytes {
		return fmt.Errorf("image exceeds %dMB", p.MaxBytes/(1024*1024))
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("not an image: %w", err)
	}
	switch format {
	case "jpeg", "png", "gif":
		return nil
	default:
		return fmt.Errorf("image format %s not allowed", format)
	}
}

// Normalize fits the image into MaxEdge and re-encodes it as JPEG,
// returning the bytes and the resulting content type.
func (p *ImageProcessor) Normalize(data []byte) ([]byte, string, error) {
	if err := p.Validate(data); err != nil {
		return nil, "", err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("cannot decode image: %w", err)
	}
	fitted := imaging.Fit(img, p.MaxEdge, p.MaxEdge, imaging.Lanczos)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, fitted, &jpeg.Options{Quality: p.Quality}); err != nil {
		return nil, "", fmt.Errorf("cannot encode image: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}
