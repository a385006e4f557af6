package imaging

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	merrors "github.com/ironsheep/photo-mosaic/internal/errors"
)

// SaveOptions controls how a finished mosaic is written.
type SaveOptions struct {
	// Flatten is the opaque color placed behind transparent pixels for
	// formats without an alpha channel (JPEG, BMP). Defaults to white.
	Flatten color.Color

	// JPEGQuality is the JPEG encoder quality (1-100). Defaults to 95.
	JPEGQuality int
}

// Flatten composites img over an opaque background of color bg and returns
// the result. The output has no transparent pixels when bg is opaque.
func Flatten(img image.Image, bg color.Color) *image.NRGBA {
	bounds := img.Bounds()
	base := imaging.New(bounds.Dx(), bounds.Dy(), bg)
	return imaging.Overlay(base, img, image.Pt(0, 0), 1.0)
}

// Save writes img to path. The format is chosen from the file extension.
// Formats that cannot carry alpha are flattened first.
func Save(img image.Image, path string, opts SaveOptions) error {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return merrors.Wrap(merrors.ErrCodeConfiguration, err, "unsupported output format for %s", path)
	}

	if opts.Flatten == nil {
		opts.Flatten = color.White
	}
	if opts.JPEGQuality <= 0 {
		opts.JPEGQuality = 95
	}

	out := img
	if format == imaging.JPEG || format == imaging.BMP {
		out = Flatten(img, opts.Flatten)
	}

	if err := imaging.Save(out, path, imaging.JPEGQuality(opts.JPEGQuality)); err != nil {
		return merrors.Wrap(merrors.ErrCodeResource, err, "failed to save mosaic to %s", path)
	}
	return nil
}
