package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestCropToAspect_Dimensions(t *testing.T) {
	tests := []struct {
		name   string
		src    image.Point
		canvas image.Point
		shift  float64
		want   image.Point
	}{
		{"landscape to square", image.Pt(5472, 3452), image.Pt(3000, 3000), 0, image.Pt(3452, 3452)},
		{"landscape to wide", image.Pt(5472, 3452), image.Pt(3000, 1500), 0.2, image.Pt(5472, 2736)},
		{"same ratio", image.Pt(300, 400), image.Pt(3000, 4000), 0, image.Pt(300, 400)},
		{"portrait to landscape", image.Pt(100, 200), image.Pt(200, 100), 0, image.Pt(100, 50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewNRGBA(image.Rectangle{Max: tt.src})
			got := CropToAspect(img, tt.canvas, tt.shift).Bounds().Size()
			if got != tt.want {
				t.Errorf("CropToAspect size = %v, want %v", got, tt.want)
			}
		})
	}
}

// stripes returns a 100x10 image whose pixel x has red value x.
func stripes() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 100; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x), 0, 0, 255})
		}
	}
	return img
}

func TestCropToAspect_Shift(t *testing.T) {
	tests := []struct {
		name  string
		shift float64
		left  uint8
	}{
		{"centered", 0, 45},
		{"shift right", 0.2, 63},
		{"shift left", -0.2, 27},
		{"clamped right", 1, 90},
		{"clamped left", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Square canvas: a 10x10 window slides over the 90 spare columns.
			got := CropToAspect(stripes(), image.Pt(1, 1), tt.shift)
			if got.Bounds().Size() != image.Pt(10, 10) {
				t.Fatalf("size = %v, want 10x10", got.Bounds().Size())
			}
			if r := got.NRGBAAt(0, 0).R; r != tt.left {
				t.Errorf("leftmost column = %d, want %d", r, tt.left)
			}
		})
	}
}

func TestCropToAspect_NonZeroOrigin(t *testing.T) {
	sub := stripes().SubImage(image.Rect(50, 0, 100, 10))
	got := CropToAspect(sub, image.Pt(1, 1), 0)
	if r := got.NRGBAAt(0, 0).R; r != 70 {
		t.Errorf("leftmost column = %d, want 70", r)
	}
}

func TestShrink(t *testing.T) {
	img := createPatternImage(40, 40)

	got := Shrink(img, image.Pt(2, 2))
	if got.Bounds().Size() != image.Pt(2, 2) {
		t.Fatalf("size = %v, want 2x2", got.Bounds().Size())
	}

	want := map[image.Point]color.NRGBA{
		{0, 0}: {255, 0, 0, 255},
		{1, 0}: {0, 255, 0, 255},
		{0, 1}: {0, 0, 255, 255},
		{1, 1}: {255, 255, 255, 255},
	}
	for p, c := range want {
		if got := got.NRGBAAt(p.X, p.Y); got != c {
			t.Errorf("cell %v = %v, want %v", p, got, c)
		}
	}
}
