package upload

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 60, B: 20, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(w, h)))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solid(w, h), nil))
	return buf.Bytes()
}

func TestNormalise_DownscalesLargePNG(t *testing.T) {
	out, err := Normalise(encodePNG(t, 400, 100), 200)
	require.NoError(t, err)
	assert.Equal(t, "image/png", out.ContentType)
	assert.Equal(t, "png", out.Ext)

	cfg, err := png.DecodeConfig(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestNormalise_DownscalesTallJPEG(t *testing.T) {
	out, err := Normalise(encodeJPEG(t, 60, 300), 100)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", out.ContentType)
	assert.Equal(t, "jpg", out.Ext)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Width)
	assert.Equal(t, 100, cfg.Height)
}

func TestNormalise_KeepsSmallImagesUntouched(t *testing.T) {
	data := encodePNG(t, 50, 50)
	out, err := Normalise(data, 100)
	require.NoError(t, err)
	assert.Equal(t, data, out.Data)
}

func TestNormalise_LeavesGIFAlone(t *testing.T) {
	var buf bytes.Buffer
	palette := image.NewPaletted(image.Rect(0, 0, 300, 300), color.Palette{color.Black, color.White})
	require.NoError(t, gif.Encode(&buf, palette, nil))

	out, err := Normalise(buf.Bytes(), 100)
	require.NoError(t, err)
	assert.Equal(t, "image/gif", out.ContentType)
	assert.Equal(t, buf.Bytes(), out.Data)
}

func TestNormalise_RejectsNonImages(t *testing.T) {
	_, err := Normalise([]byte("%PDF-1.7 not an image"), 100)
	assert.True(t, errors.Is(err, errUnsupported))

	_, err = Normalise([]byte("plain text"), 100)
	assert.True(t, errors.Is(err, errUnsupported))
}

func TestNormalise_CorruptImage(t *testing.T) {
	data := encodePNG(t, 300, 300)
	_, err := Normalise(data[:40], 100)
	require.Error(t, err)
	assert.False(t, errors.Is(err, errUnsupported))
}

func TestDownscale_NeverCollapsesToZero(t *testing.T) {
	got := downscale(solid(1000, 2), 100)
	assert.Equal(t, 100, got.Bounds().Dx())
	assert.Equal(t, 1, got.Bounds().Dy())
}
