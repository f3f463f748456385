package storage

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/chai2010/webp"
	"golang.org/x/image/draw"

	"github.com/BruksfildServices01/barber-marketplace/internal/httperr"
)

const maxPhotoEdge = 512

const webpQuality = 85

// NormalizePhoto decodes a JPEG or PNG upload, downscales it so that neither
// edge exceeds maxPhotoEdge and re-encodes it as webp.
func NormalizePhoto(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, httperr.ErrValidation("photo", "unsupported_image")
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxPhotoEdge || h > maxPhotoEdge {
		if w >= h {
			h = h * maxPhotoEdge / w
			w = maxPhotoEdge
		} else {
			w = w * maxPhotoEdge / h
			h = maxPhotoEdge
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, src, &webp.Options{Quality: webpQuality}); err != nil {
		return nil, httperr.ErrUpstream("webp_encode", err)
	}
	return buf.Bytes(), nil
}
