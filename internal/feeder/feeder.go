package feeder

import (
	"context"
	"fmt"
	"image"
	"math"
	"runtime"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	merrors "github.com/ironsheep/photo-mosaic/internal/errors"
)

// DefaultMargin is the extra scale applied on top of the covering factor.
const DefaultMargin = 0.10

// Options configures Feed.
type Options struct {
	// Workers bounds the number of donors processed concurrently.
	// Zero selects DefaultWorkers().
	Workers int

	// Margin is the fractional oversize applied before cropping
	// (0.10 = 10%). Negative values are rejected.
	Margin float64

	// Filter is the resampling filter. Nil selects imaging.Lanczos.
	Filter *imaging.ResampleFilter

	// Done, when non-nil, is called after donor i has been fed. It may be
	// called from several goroutines at once.
	Done func(i int)
}

// DefaultWorkers returns the number of CPU cores minus one (at least one),
// leaving a core for the coordinating goroutine.
func DefaultWorkers() int {
	return max(1, runtime.NumCPU()-1)
}

// ScaleToCover returns the size of src scaled uniformly by
// max(tile.X/src.X, tile.Y/src.Y) * (1 + margin), rounded to the nearest
// pixel and never smaller than tile on either axis.
func ScaleToCover(src, tile image.Point, margin float64) image.Point {
	xs := float64(tile.X) / float64(src.X)
	ys := float64(tile.Y) / float64(src.Y)
	factor := math.Max(xs, ys) * (1 + margin)

	w := int(math.Round(float64(src.X) * factor))
	h := int(math.Round(float64(src.Y) * factor))
	return image.Pt(max(w, tile.X), max(h, tile.Y))
}

// Loader returns donor i. Feed calls it once per donor from a worker
// goroutine and drops the image as soon as the tile is cut.
type Loader func(i int) (image.Image, error)

// Images returns a Loader over donors already in memory.
func Images(donors []image.Image) Loader {
	return func(i int) (image.Image, error) {
		return donors[i], nil
	}
}

// Feed loads n donors through load and turns each into a tile of exactly
// tile pixels.
//
// Tile i of the result is made from donor i. Only the donors currently held
// by a worker are decoded at any moment. Workers share no mutable state
// besides their own slot of the pre-sized result slice. Cancelling ctx stops
// workers before they pick up their next donor and Feed returns the context
// error.
func Feed(ctx context.Context, n int, load Loader, tile image.Point, opts Options) ([]*image.NRGBA, error) {
	if tile.X <= 0 || tile.Y <= 0 {
		return nil, merrors.New(merrors.ErrCodeConfiguration, "tile size must be positive, got %dx%d", tile.X, tile.Y)
	}
	if opts.Margin < 0 {
		return nil, merrors.New(merrors.ErrCodeConfiguration, "tile margin must be >= 0, got %g", opts.Margin)
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers()
	}
	if opts.Filter == nil {
		opts.Filter = &imaging.Lanczos
	}

	tiles := make([]*image.NRGBA, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := range n {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			donor, err := load(i)
			if err != nil {
				return merrors.Wrap(merrors.ErrCodeResource, err, "failed to load donor %d", i)
			}
			t, err := feedOne(donor, tile, opts)
			if err != nil {
				return merrors.Wrap(merrors.ErrCodeResource, err, "failed to feed tile %d", i)
			}
			tiles[i] = t
			if opts.Done != nil {
				opts.Done(i)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tiles, nil
}

func feedOne(donor image.Image, tile image.Point, opts Options) (*image.NRGBA, error) {
	src := donor.Bounds().Size()
	if src.X <= 0 || src.Y <= 0 {
		return nil, fmt.Errorf("donor has empty bounds %v", donor.Bounds())
	}
	scaled := ScaleToCover(src, tile, opts.Margin)
	resized := imaging.Resize(donor, scaled.X, scaled.Y, *opts.Filter)
	return imaging.CropCenter(resized, tile.X, tile.Y), nil
}
