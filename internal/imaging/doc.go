// Package imaging provides the image I/O and color primitives of the mosaic
// pipeline.
//
// It covers everything that touches pixels outside the assignment engine:
// decoding donors and the source photo (with EXIF orientation applied),
// cropping the source to the canvas aspect ratio, shrinking it to one pixel
// per grid cell, reducing images to mean color vectors, and flattening and
// saving the finished raster.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based and relative to the
// image bounds origin:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. The other functions are
// stateless and may be called concurrently on different images.
//
// # Color Representation
//
// ColorVector holds one float per channel on the 8-bit scale (0-255).
// Vectors are compared by Euclidean distance, either directly (SpaceRGB) or
// after projection into CIE L*a*b* (SpaceLab).
//
// # Error Handling
//
// Decode and encode failures are reported as errors.ErrCodeResource;
// malformed settings (unknown color space, bad color string, unsupported
// output extension) as errors.ErrCodeConfiguration.
package imaging
