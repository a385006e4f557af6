package imaging

import (
	"context"
	"image"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	merrors "github.com/ironsheep/photo-mosaic/internal/errors"
)

// ImageCache provides thread-safe caching of decoded images keyed by path.
//
// Images are decoded with EXIF orientation applied, so a cached image is
// always upright. Donors never go through the cache; callers that load a
// one-off image evict it once they are done with it.
//
// ImageCache is safe for concurrent use by multiple goroutines.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or decodes it from disk if not cached.
//
// Supported formats are the ones disintegration/imaging registers: JPEG, PNG,
// GIF, TIFF and BMP. EXIF orientation tags are honored.
//
// # Errors
//
// Returns an ErrCodeResource error if the file cannot be opened or decoded.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := Open(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Open decodes the image at path with EXIF orientation applied, bypassing
// any cache.
//
// # Errors
//
// Returns an ErrCodeResource error if the file cannot be opened or decoded.
func Open(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, merrors.Wrap(merrors.ErrCodeResource, err, "failed to decode image %s", path)
	}
	return img, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// imageExtensions lists the file extensions treated as donor images.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
}

// ListImages walks dir recursively and returns every image file beneath it,
// sorted by path so the donor order is stable between runs.
//
// Files are selected by extension (case-insensitive). Hidden files are skipped.
func ListImages(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if imageExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, merrors.Wrap(merrors.ErrCodeResource, err, "failed to list tiles in %s", dir)
	}
	sort.Strings(paths)
	return paths, nil
}

// Donor is a donor file known to decode, with its upright pixel size.
// The pixels themselves are not kept.
type Donor struct {
	Path string
	Size image.Point
}

// SkipFunc is called for every donor that fails to decode.
type SkipFunc func(path string, err error)

// LoadDonors decodes paths on a pool of at most workers goroutines and
// returns the donors that decoded, in input order.
//
// Each worker holds one decoded image at a time: it records the oriented size
// and drops the pixels, so the survey costs one image per worker rather than
// the whole pool. A donor that fails to decode is reported through skip (when
// non-nil) and left out of the result, so the returned slice is the effective
// pool. Only context cancellation aborts the load.
func LoadDonors(ctx context.Context, paths []string, workers int, skip SkipFunc) ([]Donor, error) {
	if workers < 1 {
		workers = 1
	}

	sizes := make([]image.Point, len(paths))
	failed := make([]error, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := Open(path)
			if err != nil {
				failed[i] = err
				return nil
			}
			sizes[i] = img.Bounds().Size()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	donors := make([]Donor, 0, len(paths))
	for i, path := range paths {
		if failed[i] != nil {
			if skip != nil {
				skip(path, failed[i])
			}
			continue
		}
		donors = append(donors, Donor{Path: path, Size: sizes[i]})
	}
	return donors, nil
}

// Sizes returns the pixel dimensions of each donor, in order.
func Sizes(donors []Donor) []image.Point {
	sizes := make([]image.Point, len(donors))
	for i, d := range donors {
		sizes[i] = d.Size
	}
	return sizes
}
