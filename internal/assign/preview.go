package assign

import (
	"image"

	merrors "github.com/ironsheep/photo-mosaic/internal/errors"
	"github.com/ironsheep/photo-mosaic/internal/imaging"
)

// Preview is the source photo reduced to one target color per cell.
//
// Colors is indexed by y*W + x.
type Preview struct {
	W, H   int
	Colors []imaging.ColorVector
}

// NewPreview reads one color per pixel of img, which must already be shrunk
// to the grid size (one pixel per cell).
func NewPreview(img image.Image) Preview {
	b := img.Bounds()
	p := Preview{W: b.Dx(), H: b.Dy(), Colors: make([]imaging.ColorVector, 0, b.Dx()*b.Dy())}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p.Colors = append(p.Colors, imaging.ColorAt(img, x, y))
		}
	}
	return p
}

// At returns the target color of cell (x, y).
func (p Preview) At(x, y int) imaging.ColorVector {
	return p.Colors[y*p.W+x]
}

// Project returns a copy of p with every color mapped into space.
func (p Preview) Project(space imaging.ColorSpace) Preview {
	return Preview{W: p.W, H: p.H, Colors: space.ProjectAll(p.Colors)}
}

// Validate checks that the preview describes a non-empty grid and holds one
// color per cell.
func (p Preview) Validate() error {
	if p.W <= 0 || p.H <= 0 {
		return merrors.New(merrors.ErrCodeConfiguration, "canvas must have at least one cell, got %dx%d", p.W, p.H)
	}
	if len(p.Colors) != p.W*p.H {
		return merrors.New(merrors.ErrCodeConfiguration, "preview has %d colors for %dx%d cells", len(p.Colors), p.W, p.H)
	}
	return nil
}
