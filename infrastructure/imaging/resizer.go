package imaging

import (
	"bytes"
	"context"
	"image"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"trustie-admin/application/ports"
	pkgerrors "trustie-admin/pkg/errors"
)

// Target widths of the derived variants. Heights keep the aspect ratio.
const (
	ThumbnailWidth = 50
	LowWidth       = 100
	HighWidth      = 800
)

// Resizer derives JPEG variants of an uploaded image
type Resizer struct {
	quality int
	logger  *zap.Logger
}

// NewResizer creates a resizer encoding at the given JPEG quality
func NewResizer(quality int, logger *zap.Logger) *Resizer {
	if quality <= 0 || quality > 100 {
		quality = 80
	}
	return &Resizer{quality: quality, logger: logger}
}

// Transform implements ports.ImageTransformer. The three resizes run
// concurrently and all of them must succeed.
func (r *Resizer) Transform(ctx context.Context, data []byte) (*ports.ImageVariants, error) {
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, pkgerrors.NewValidationError("image could not be decoded").
			WithCode(pkgerrors.CodeImageTransform).
			WithCause(err)
	}

	var variants ports.ImageVariants
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		variants.Thumbnail, err = r.resize(gctx, src, ThumbnailWidth)
		return err
	})
	g.Go(func() (err error) {
		variants.Low, err = r.resize(gctx, src, LowWidth)
		return err
	})
	g.Go(func() (err error) {
		variants.High, err = r.resize(gctx, src, HighWidth)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.Debug("Image transformed",
		zap.Int("width", src.Bounds().Dx()),
		zap.Int("height", src.Bounds().Dy()),
	)
	return &variants, nil
}

func (r *Resizer) resize(ctx context.Context, src image.Image, width int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resized := imaging.Resize(src, width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(r.quality)); err != nil {
		return nil, pkgerrors.NewInternalError("failed to encode resized image").
			WithCode(pkgerrors.CodeImageTransform).
			WithDetail("width", width).
			WithCause(err)
	}
	return buf.Bytes(), nil
}
