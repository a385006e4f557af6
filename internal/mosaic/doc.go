// Package mosaic runs the full photo-mosaic pipeline.
//
// A run loads the source photo and surveys the donor pool, plans the tile and
// grid geometry, builds the color preview, feeds the donors into tiles,
// solves the assignment and composites the canvas. Run additionally saves the
// canvas.
package mosaic
