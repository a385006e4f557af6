package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"

	merrors "github.com/ironsheep/photo-mosaic/internal/errors"
)

// ColorVector is the matching signature of an image region: one mean value
// per channel on the 8-bit scale (R, G, B in 0..255).
//
// A ColorVector is never modified after it is computed.
type ColorVector []float64

// Distance returns the Euclidean distance between two vectors of equal length.
func (v ColorVector) Distance(o ColorVector) float64 {
	return floats.Distance(v, o, 2)
}

// Hex formats the vector as "#RRGGBB", clamping each channel. Used for logs.
func (v ColorVector) Hex() string {
	return colorful.Color{R: v[0] / 255, G: v[1] / 255, B: v[2] / 255}.Clamped().Hex()
}

// MeanColor computes the per-channel mean over every pixel of img, weighting
// each pixel by its alpha.
//
// The result has three channels (R, G, B) on the 8-bit scale. An opaque image
// gets the plain arithmetic mean; a fully transparent one gets black.
// MeanColor is a pure function of the pixel data.
func MeanColor(img image.Image) ColorVector {
	bounds := img.Bounds()
	if bounds.Empty() {
		return ColorVector{0, 0, 0}
	}

	var sr, sg, sb, sa float64
	add := func(r, g, b, a uint8) {
		w := float64(a)
		sr += float64(r) * w
		sg += float64(g) * w
		sb += float64(b) * w
		sa += w
	}
	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := 0; y < bounds.Dy(); y++ {
			row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+bounds.Dx()*4]
			for i := 0; i < len(row); i += 4 {
				add(row[i], row[i+1], row[i+2], row[i+3])
			}
		}
	} else {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				add(c.R, c.G, c.B, c.A)
			}
		}
	}
	if sa == 0 {
		return ColorVector{0, 0, 0}
	}

	mean := ColorVector{sr, sg, sb}
	floats.Scale(1/sa, mean)
	return mean
}

// MeanColors returns the mean color of each tile, in tile order.
func MeanColors[T image.Image](tiles []T) []ColorVector {
	colors := make([]ColorVector, len(tiles))
	for i, t := range tiles {
		colors[i] = MeanColor(t)
	}
	return colors
}

// PixelColor returns the exact color of the pixel at (x, y) as a ColorVector.
// Coordinates are relative to the image bounds origin.
func PixelColor(img image.Image, x, y int) (ColorVector, error) {
	bounds := img.Bounds()
	px, py := bounds.Min.X+x, bounds.Min.Y+y
	if px < bounds.Min.X || px >= bounds.Max.X || py < bounds.Min.Y || py >= bounds.Max.Y {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}
	return ColorAt(img, px, py), nil
}

// ColorAt returns the color of the pixel at absolute coordinates (x, y).
// Points outside the bounds read as whatever img.At reports, usually black.
func ColorAt(img image.Image, x, y int) ColorVector {
	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	return ColorVector{float64(c.R), float64(c.G), float64(c.B)}
}

// ColorSpace selects the space in which tile and cell colors are compared.
type ColorSpace string

const (
	// SpaceRGB compares raw 8-bit RGB means.
	SpaceRGB ColorSpace = "rgb"

	// SpaceLab compares CIE L*a*b* coordinates (D65), which track perceived
	// difference more closely than RGB.
	SpaceLab ColorSpace = "lab"
)

// ParseColorSpace converts a configuration string to a ColorSpace.
// The empty string selects SpaceRGB.
func ParseColorSpace(s string) (ColorSpace, error) {
	switch ColorSpace(strings.ToLower(strings.TrimSpace(s))) {
	case "", SpaceRGB:
		return SpaceRGB, nil
	case SpaceLab:
		return SpaceLab, nil
	default:
		return "", merrors.New(merrors.ErrCodeConfiguration, "unknown color space %q (want rgb or lab)", s)
	}
}

// Project maps an RGB vector into the color space. SpaceRGB returns a copy.
func (s ColorSpace) Project(v ColorVector) ColorVector {
	if s != SpaceLab {
		out := make(ColorVector, len(v))
		copy(out, v)
		return out
	}
	l, a, b := colorful.Color{R: v[0] / 255, G: v[1] / 255, B: v[2] / 255}.Lab()
	return ColorVector{l, a, b}
}

// ProjectAll maps every vector into the color space, preserving order.
func (s ColorSpace) ProjectAll(vs []ColorVector) []ColorVector {
	out := make([]ColorVector, len(vs))
	for i, v := range vs {
		out[i] = s.Project(v)
	}
	return out
}

// ParseColor parses "#RRGGBB" or "#RGB". The empty string and "transparent"
// yield a fully transparent color.
func ParseColor(s string) (color.Color, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "transparent") {
		return color.Transparent, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, merrors.Wrap(merrors.ErrCodeConfiguration, err, "invalid color %q", s)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}
