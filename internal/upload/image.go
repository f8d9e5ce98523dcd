package upload

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

const jpegQuality = 85

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Normalised is an image ready to be stored.
type Normalised struct {
	Data        []byte
	ContentType string
	Ext         string
}

var errUnsupported = errors.New("unsupported image type")

// Normalise sniffs data and downscales it when either side exceeds maxDim.
// Images within bounds and GIFs are returned untouched.
func Normalise(data []byte, maxDim int) (Normalised, error) {
	contentType := http.DetectContentType(data)
	ext, ok := extensions[contentType]
	if !ok {
		return Normalised{}, fmt.Errorf("%w: %s", errUnsupported, contentType)
	}
	out := Normalised{Data: data, ContentType: contentType, Ext: ext}
	if contentType == "image/gif" || maxDim <= 0 {
		return out, nil
	}

	cfg, err := decodeConfig(contentType, data)
	if err != nil {
		return Normalised{}, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= maxDim && cfg.Height <= maxDim {
		return out, nil
	}

	img, err := decode(contentType, data)
	if err != nil {
		return Normalised{}, fmt.Errorf("decode image: %w", err)
	}
	img = downscale(img, maxDim)

	var buf bytes.Buffer
	switch contentType {
	case "image/png":
		err = png.Encode(&buf, img)
	default:
		// webp has no encoder in x/image, so large webp files become jpeg.
		out.ContentType, out.Ext = "image/jpeg", "jpg"
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return Normalised{}, fmt.Errorf("encode image: %w", err)
	}
	out.Data = buf.Bytes()
	return out, nil
}

func decodeConfig(contentType string, data []byte) (image.Config, error) {
	r := bytes.NewReader(data)
	switch contentType {
	case "image/png":
		return png.DecodeConfig(r)
	case "image/webp":
		return webp.DecodeConfig(r)
	default:
		return jpeg.DecodeConfig(r)
	}
}

func decode(contentType string, data []byte) (image.Image, error) {
	r := bytes.NewReader(data)
	switch contentType {
	case "image/png":
		return png.Decode(r)
	case "image/webp":
		return webp.Decode(r)
	default:
		return jpeg.Decode(r)
	}
}

// downscale fits img inside a maxDim square keeping the aspect ratio.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := maxDim, maxDim
	if w > h {
		newH = max(1, h*maxDim/w)
	} else {
		newW = max(1, w*maxDim/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
