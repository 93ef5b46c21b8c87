package service

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

const (
	// AvatarMaxDimension is the bounding box avatars are resized into.
	AvatarMaxDimension = 256

	avatarJPEGQuality = 85
)

// AvatarProcessor normalizes uploaded avatar images.
type AvatarProcessor interface {
	// Process decodes an uploaded image and returns a JPEG resized to
	// fit within AvatarMaxDimension on both axes.
	Process(data io.Reader) ([]byte, error)
}

type imagingProcessor struct{}

// NewAvatarProcessor creates an AvatarProcessor backed by the imaging
// library.
func NewAvatarProcessor() AvatarProcessor {
	return &imagingProcessor{}
}

func (p *imagingProcessor) Process(data io.Reader) ([]byte, error) {
	img, _, err := image.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	resized := imaging.Fit(img, AvatarMaxDimension, AvatarMaxDimension, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(avatarJPEGQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}
