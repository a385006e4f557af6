// Package compose paints assigned tiles onto the mosaic canvas.
//
// Cells are painted in reverse placement order: the worst match first and
// the best match last. Every tile is shifted toward the exact target color
// of its cell, given a small random rotation, and alpha-composited over the
// canvas. Where a rotated tile spills into a neighbor, whichever of the two
// matched better is painted later and stays visible.
//
// # Color Correction
//
// Correct works on straight color: translucent pixels are unpremultiplied,
// shifted, clamped and premultiplied again, so their alpha is untouched.
package compose
