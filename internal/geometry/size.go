package geometry

import (
	"image"
	"math"

	merrors "github.com/ironsheep/photo-mosaic/internal/errors"
)

// TileSize computes the pixel size of one tile.
//
// With n donors, redundancy r and a tile ratio aw:ah, the canvas area is
// split so that n*r tiles of shape aw:ah cover it. The scale factor
// x = ceil(sqrt(area / (n*r*aw*ah))) is rounded up, so the grid holds at
// most about n*r cells. A larger r never gives a larger tile.
//
// When ratio is nil the ratio is derived from sizes with TileRatio;
// otherwise sizes is ignored.
//
// Reference values for 160 donors with a 3:4 median ratio:
//   - canvas 3000x4000, r=1: 240x320
//   - canvas 1000x1000, r=1: 69x92
//   - canvas 3000x4000, ratio 16:9: 368x207
//   - canvas 3000x4000, r=5: 108x144
func TileSize(pool int, sizes []image.Point, canvas image.Point, ratio *Ratio, redundancy float64) (image.Point, error) {
	if pool <= 0 {
		return image.Point{}, merrors.New(merrors.ErrCodeConfiguration, "tile pool is empty")
	}
	if err := ValidateCanvas(canvas); err != nil {
		return image.Point{}, err
	}
	if redundancy < 1 || math.IsNaN(redundancy) || math.IsInf(redundancy, 0) {
		return image.Point{}, merrors.New(merrors.ErrCodeConfiguration, "redundancy must be >= 1, got %g", redundancy)
	}

	var aspect Ratio
	if ratio != nil {
		if err := ratio.Validate(); err != nil {
			return image.Point{}, err
		}
		aspect = *ratio
	} else {
		r, err := TileRatio(sizes)
		if err != nil {
			return image.Point{}, err
		}
		aspect = r
	}

	area := float64(canvas.X) * float64(canvas.Y)
	pixArea := float64(aspect.W) * float64(aspect.H)
	x := int(math.Ceil(math.Sqrt(area / float64(pool) / redundancy / pixArea)))
	x = max(x, 1)

	return image.Pt(aspect.W*x, aspect.H*x), nil
}

// ValidateCanvas reports a configuration error unless both canvas
// dimensions are positive.
func ValidateCanvas(canvas image.Point) error {
	if canvas.X <= 0 || canvas.Y <= 0 {
		return merrors.New(merrors.ErrCodeConfiguration, "canvas dimensions must be positive, got %dx%d", canvas.X, canvas.Y)
	}
	return nil
}

// AutoSwitch swaps the canvas width and height when the photo and the canvas
// disagree on orientation, so a portrait photo never lands on a landscape
// canvas (or the reverse). A photo is portrait when its width is smaller
// than its height; square counts as landscape.
func AutoSwitch(photo, canvas image.Point) image.Point {
	if (photo.X < photo.Y) != (canvas.X < canvas.Y) {
		return image.Pt(canvas.Y, canvas.X)
	}
	return canvas
}

// GridSize returns the number of cells across and down the canvas: the
// canvas size divided by the tile size, rounded to the nearest integer, and
// never less than one cell per axis.
func GridSize(canvas, tile image.Point) image.Point {
	w := int(math.Round(float64(canvas.X) / float64(tile.X)))
	h := int(math.Round(float64(canvas.Y) / float64(tile.Y)))
	return image.Pt(max(w, 1), max(h, 1))
}
