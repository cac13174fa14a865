package imaging

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	pkgerrors "trustie-admin/pkg/errors"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodedWidth(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestTransformProducesThreeWidths(t *testing.T) {
	r := NewResizer(80, zap.NewNop())

	variants, err := r.Transform(context.Background(), encodePNG(t, 1600, 800))
	require.NoError(t, err)

	w, h := decodedWidth(t, variants.Thumbnail)
	assert.Equal(t, 50, w)
	assert.Equal(t, 25, h)
	w, _ = decodedWidth(t, variants.Low)
	assert.Equal(t, 100, w)
	w, h = decodedWidth(t, variants.High)
	assert.Equal(t, 800, w)
	assert.Equal(t, 400, h)
}

func TestTransformRejectsGarbage(t *testing.T) {
	r := NewResizer(80, zap.NewNop())

	_, err := r.Transform(context.Background(), []byte("not an image"))
	require.Error(t, err)
	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeImageTransform, appErr.Code)
}
