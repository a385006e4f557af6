package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	merrors "github.com/ironsheep/photo-mosaic/internal/errors"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.NRGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.NRGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.NRGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.NRGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestMeanColor(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
		want ColorVector
	}{
		{"solid RGBA", createInMemoryImage(10, 10, color.RGBA{255, 128, 64, 255}), ColorVector{255, 128, 64}},
		{"quadrants NRGBA", createPatternImage(10, 10), ColorVector{127.5, 127.5, 127.5}},
		{"gray", image.NewGray(image.Rect(0, 0, 3, 3)), ColorVector{0, 0, 0}},
		{"empty", image.NewNRGBA(image.Rect(0, 0, 0, 0)), ColorVector{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, MeanColor(tt.img), approx); diff != "" {
				t.Errorf("MeanColor mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMeanColor_SubImageOffset(t *testing.T) {
	img := createPatternImage(20, 20)
	// Top-right quadrant only: pure green.
	sub := img.SubImage(image.Rect(10, 0, 20, 10)).(*image.NRGBA)

	if diff := cmp.Diff(ColorVector{0, 255, 0}, MeanColor(sub), approx); diff != "" {
		t.Errorf("MeanColor mismatch (-want +got):\n%s", diff)
	}
}

func TestMeanColor_WeightsByAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 1))
	img.SetNRGBA(0, 0, color.NRGBA{200, 100, 0, 255})
	img.SetNRGBA(1, 0, color.NRGBA{200, 100, 0, 255})
	img.SetNRGBA(2, 0, color.NRGBA{0, 0, 255, 0})
	img.SetNRGBA(3, 0, color.NRGBA{100, 50, 0, 128})

	// Two full-weight pixels and one at 128/255; the invisible blue pixel
	// does not count.
	w := 128.0 / 255
	want := ColorVector{(400 + 100*w) / (2 + w), (200 + 50*w) / (2 + w), 0}
	if diff := cmp.Diff(want, MeanColor(img), approx); diff != "" {
		t.Errorf("MeanColor mismatch (-want +got):\n%s", diff)
	}

	blank := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	if diff := cmp.Diff(ColorVector{0, 0, 0}, MeanColor(blank)); diff != "" {
		t.Errorf("transparent MeanColor mismatch (-want +got):\n%s", diff)
	}
}

func TestMeanColor_Pure(t *testing.T) {
	img := createPatternImage(16, 12)
	first := MeanColor(img)
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first, MeanColor(img)); diff != "" {
			t.Fatalf("MeanColor not deterministic:\n%s", diff)
		}
	}
}

func TestMeanColors_Order(t *testing.T) {
	tiles := []*image.NRGBA{
		createPatternImage(4, 4),
		image.NewNRGBA(image.Rect(0, 0, 2, 2)),
	}
	got := MeanColors(tiles)
	want := []ColorVector{{127.5, 127.5, 127.5}, {0, 0, 0}}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("MeanColors mismatch (-want +got):\n%s", diff)
	}
}

func TestPixelColor(t *testing.T) {
	img := createPatternImage(10, 10)

	got, err := PixelColor(img, 9, 9)
	if err != nil {
		t.Fatalf("PixelColor failed: %v", err)
	}
	if diff := cmp.Diff(ColorVector{255, 255, 255}, got); diff != "" {
		t.Errorf("PixelColor mismatch (-want +got):\n%s", diff)
	}

	for _, p := range []image.Point{{-1, 0}, {0, -1}, {10, 0}, {0, 10}} {
		if _, err := PixelColor(img, p.X, p.Y); err == nil {
			t.Errorf("PixelColor(%v) should fail", p)
		}
	}
}

func TestColorAt(t *testing.T) {
	img := createPatternImage(20, 20)
	sub := img.SubImage(image.Rect(10, 10, 20, 20))

	if diff := cmp.Diff(ColorVector{255, 255, 255}, ColorAt(sub, 10, 10)); diff != "" {
		t.Errorf("ColorAt mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(ColorVector{0, 0, 0}, ColorAt(img, -5, 3)); diff != "" {
		t.Errorf("ColorAt outside bounds mismatch (-want +got):\n%s", diff)
	}
}

func TestColorVector_Distance(t *testing.T) {
	a := ColorVector{0, 0, 0}
	b := ColorVector{3, 4, 12}
	if got := a.Distance(b); math.Abs(got-13) > 1e-12 {
		t.Errorf("Distance = %v, want 13", got)
	}
	if got := b.Distance(b); got != 0 {
		t.Errorf("Distance to self = %v, want 0", got)
	}
}

func TestColorVector_Hex(t *testing.T) {
	tests := []struct {
		v    ColorVector
		want string
	}{
		{ColorVector{255, 128, 0}, "#ff8000"},
		{ColorVector{300, -5, 0}, "#ff0000"},
	}
	for _, tt := range tests {
		if got := tt.v.Hex(); got != tt.want {
			t.Errorf("Hex(%v) = %s, want %s", tt.v, got, tt.want)
		}
	}
}

func TestParseColorSpace(t *testing.T) {
	tests := []struct {
		in      string
		want    ColorSpace
		wantErr bool
	}{
		{"", SpaceRGB, false},
		{"rgb", SpaceRGB, false},
		{" LAB ", SpaceLab, false},
		{"hsv", "", true},
	}
	for _, tt := range tests {
		got, err := ParseColorSpace(tt.in)
		if tt.wantErr {
			if !merrors.Is(err, merrors.ErrCodeConfiguration) {
				t.Errorf("ParseColorSpace(%q) error = %v, want CONFIGURATION", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseColorSpace(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestColorSpace_Project(t *testing.T) {
	v := ColorVector{255, 255, 255}

	rgb := SpaceRGB.Project(v)
	if diff := cmp.Diff(v, rgb); diff != "" {
		t.Errorf("RGB projection changed vector:\n%s", diff)
	}
	rgb[0] = 0
	if v[0] != 255 {
		t.Error("RGB projection must not alias its input")
	}

	lab := SpaceLab.Project(v)
	if math.Abs(lab[0]-1) > 1e-3 || math.Abs(lab[1]) > 1e-3 || math.Abs(lab[2]) > 1e-3 {
		t.Errorf("white in Lab = %v, want ~(1, 0, 0)", lab)
	}

	all := SpaceLab.ProjectAll([]ColorVector{{0, 0, 0}, v})
	if len(all) != 2 || math.Abs(all[0][0]) > 1e-9 {
		t.Errorf("ProjectAll = %v", all)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.Color
		wantErr bool
	}{
		{"", color.Transparent, false},
		{"transparent", color.Transparent, false},
		{"#FF8000", color.NRGBA{255, 128, 0, 255}, false},
		{"00ff00", color.NRGBA{0, 255, 0, 255}, false},
		{"#fff", color.NRGBA{255, 255, 255, 255}, false},
		{"#zzzzzz", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				if !merrors.Is(err, merrors.ErrCodeConfiguration) {
					t.Errorf("ParseColor(%q) error = %v, want CONFIGURATION", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseColor(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
