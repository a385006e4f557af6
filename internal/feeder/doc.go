// Package feeder rescales donor images into uniformly sized mosaic tiles.
//
// Every donor is scaled (preserving aspect ratio) just far enough to cover
// the planned tile size plus a small safety margin, then center-cropped to
// exactly the tile size. Donors are processed on a bounded worker pool and
// decoded inside the worker through a Loader, so only the donors in flight
// are held in memory. The output slice always mirrors the input order
// because later stages address tiles by index.
package feeder
