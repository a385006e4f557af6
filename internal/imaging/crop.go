package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// CropToAspect crops img to the aspect ratio of canvas, keeping as much of the
// image as possible.
//
// The crop is centered on the axis that has to be shortened, then moved by
// shift times the number of pixels cut from that axis. A shift of 0 gives a
// centered crop. Positive values move the window right (or down), negative
// values left (or up). The window is clamped to the image bounds.
//
// For a 5472x3452 photo:
//   - canvas (3000, 3000) yields 3452x3452
//   - canvas (3000, 1500) yields 5472x2736
func CropToAspect(img image.Image, canvas image.Point, shift float64) *image.NRGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	cropW, cropH := w, h
	var dx, dy int
	if float64(h)/float64(w) > float64(canvas.Y)/float64(canvas.X) {
		cropH = int(float64(w) * float64(canvas.Y) / float64(canvas.X))
		dy = int(float64(h-cropH) * shift)
	} else {
		cropW = int(float64(h) * float64(canvas.X) / float64(canvas.Y))
		dx = int(float64(w-cropW) * shift)
	}
	cropW = max(cropW, 1)
	cropH = max(cropH, 1)

	x0 := clamp((w-cropW)/2+dx, 0, w-cropW)
	y0 := clamp((h-cropH)/2+dy, 0, h-cropH)

	rect := image.Rect(x0, y0, x0+cropW, y0+cropH).Add(bounds.Min)
	return imaging.Crop(img, rect)
}

// Shrink resamples img so that each output pixel covers exactly one grid
// cell. The box filter averages every source pixel that falls in a cell.
func Shrink(img image.Image, grid image.Point) *image.NRGBA {
	return imaging.Resize(img, grid.X, grid.Y, imaging.Box)
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
