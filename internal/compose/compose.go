package compose

import (
	"context"
	"image"
	"image/color"
	"math/rand/v2"
	"time"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/transform"
	"golang.org/x/image/draw"

	"github.com/ironsheep/photo-mosaic/internal/assign"
	merrors "github.com/ironsheep/photo-mosaic/internal/errors"
	"github.com/ironsheep/photo-mosaic/internal/imaging"
)

// MaxTilt is the largest accepted rotation jitter, in degrees.
const MaxTilt = 45

// Input gathers everything Composite needs. Nothing in it is modified.
type Input struct {
	// Canvas is the output size in pixels.
	Canvas image.Point

	// Tile is the size of every tile and of one grid cell.
	Tile image.Point

	// Tiles are the fed tiles, in pool order.
	Tiles []*image.NRGBA

	// Means are the RGB mean colors of Tiles, in pool order.
	Means []imaging.ColorVector

	// Preview holds the RGB target color of every cell.
	Preview assign.Preview

	// Assignment is the solved grid and placement order.
	Assignment *assign.Assignment

	// Tilt is the maximum rotation jitter in whole degrees. Each tile is
	// rotated by an angle drawn uniformly from [-Tilt, Tilt].
	Tilt int

	// Background fills the canvas before painting. Nil leaves it transparent.
	Background color.Color

	// Rand supplies rotation angles. Nil seeds a generator from the clock.
	Rand *rand.Rand

	// Progress, when non-nil, is called after each painted cell.
	Progress func(done, total int)
}

func (in *Input) validate() error {
	if in.Canvas.X <= 0 || in.Canvas.Y <= 0 {
		return merrors.New(merrors.ErrCodeConfiguration, "canvas dimensions must be positive, got %dx%d", in.Canvas.X, in.Canvas.Y)
	}
	if in.Tile.X <= 0 || in.Tile.Y <= 0 {
		return merrors.New(merrors.ErrCodeConfiguration, "tile size must be positive, got %dx%d", in.Tile.X, in.Tile.Y)
	}
	if in.Tilt < 0 || in.Tilt > MaxTilt {
		return merrors.New(merrors.ErrCodeConfiguration, "tilt must be between 0 and %d degrees, got %d", MaxTilt, in.Tilt)
	}
	a := in.Assignment
	if a == nil {
		return merrors.New(merrors.ErrCodeInvariant, "no assignment to composite")
	}
	if len(in.Tiles) != a.Pool || len(in.Means) != a.Pool {
		return merrors.New(merrors.ErrCodeInvariant, "assignment expects %d tiles, got %d tiles and %d means", a.Pool, len(in.Tiles), len(in.Means))
	}
	if in.Preview.W != a.W || in.Preview.H != a.H {
		return merrors.New(merrors.ErrCodeInvariant, "preview is %dx%d but assignment is %dx%d", in.Preview.W, in.Preview.H, a.W, a.H)
	}
	for i, t := range in.Tiles {
		if t.Bounds().Size() != in.Tile {
			return merrors.New(merrors.ErrCodeInvariant, "tile %d is %v, want %v", i, t.Bounds().Size(), in.Tile)
		}
	}
	return nil
}

// Composite paints the mosaic and returns the canvas.
//
// The canvas is checked for cancellation before each cell; a cancelled
// context aborts with ctx.Err() and no partial canvas.
func Composite(ctx context.Context, in Input) (*image.RGBA, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	rng := in.Rand
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>32))
	}

	canvas := image.NewRGBA(image.Rectangle{Max: in.Canvas})
	if in.Background != nil {
		draw.Draw(canvas, canvas.Bounds(), image.NewUniform(in.Background), image.Point{}, draw.Src)
	}

	order := in.Assignment.Order
	total := len(order)
	for i := total - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cell := order[i]
		index := in.Assignment.TileAt(cell.X, cell.Y)
		tile := Correct(in.Tiles[index], in.Means[index], in.Preview.At(cell.X, cell.Y))

		angle := 0
		if in.Tilt > 0 {
			angle = rng.IntN(2*in.Tilt+1) - in.Tilt
		}
		paste(canvas, Rotate(tile, angle), cellCenter(cell, in.Tile))

		if in.Progress != nil {
			in.Progress(total-i, total)
		}
	}
	return canvas, nil
}

// Correct shifts every pixel of tile by target - mean, channel by channel,
// clamping to 0..255. The tile's mean moves onto the target color while its
// detail is kept. Alpha is preserved and the shift applies to the straight
// (unpremultiplied) color, so translucent pixels stay valid.
func Correct(tile image.Image, mean, target imaging.ColorVector) *image.RGBA {
	dr := target[0] - mean[0]
	dg := target[1] - mean[1]
	db := target[2] - mean[2]
	return adjust.Apply(tile, func(c color.RGBA) color.RGBA {
		if c.A == 0 {
			return c
		}
		alpha := float64(c.A) / 255
		return color.RGBA{
			R: shift(c.R, dr, alpha),
			G: shift(c.G, dg, alpha),
			B: shift(c.B, db, alpha),
			A: c.A,
		}
	})
}

// shift unpremultiplies v by alpha, adds d, clamps to the 8-bit range and
// premultiplies again, truncating.
func shift(v uint8, d, alpha float64) uint8 {
	f := float64(v)/alpha + d
	if f <= 0 {
		return 0
	}
	if f >= 255 {
		f = 255
	}
	return uint8(f * alpha)
}

// Rotate turns img by angle degrees, growing the bounds to fit the rotated
// image. Uncovered corners are transparent. A zero angle returns img as is.
func Rotate(img *image.RGBA, angle int) *image.RGBA {
	if angle == 0 {
		return img
	}
	return transform.Rotate(img, float64(angle), &transform.RotationOptions{ResizeBounds: true})
}

// cellCenter returns the canvas pixel at the center of cell.
func cellCenter(cell, tile image.Point) image.Point {
	return image.Pt(cell.X*tile.X+tile.X/2, cell.Y*tile.Y+tile.Y/2)
}

// paste alpha-composites src onto dst with src centered on center. For an
// unrotated tile the top-left corner lands exactly on the cell offset.
func paste(dst *image.RGBA, src *image.RGBA, center image.Point) {
	size := src.Bounds().Size()
	at := center.Sub(image.Pt(size.X/2, size.Y/2))
	draw.Copy(dst, at, src, src.Bounds(), draw.Over, nil)
}
