package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ironsheep/photo-mosaic/internal/compose"
	merrors "github.com/ironsheep/photo-mosaic/internal/errors"
	"github.com/ironsheep/photo-mosaic/internal/geometry"
	"github.com/ironsheep/photo-mosaic/internal/imaging"
)

// EnvStems names the environment variable holding a comma-separated list of
// config file stems.
const EnvStems = "PHOTO_MOSAIC_CONFIG"

// DefaultStem is used when EnvStems is unset.
const DefaultStem = "config"

// DefaultLocations are the directories searched for config files.
var DefaultLocations = []string{".", "config"}

// ErrNotFound is the cause of a Load failure that found no file to read.
var ErrNotFound = errors.New("config not found")

// Config holds every tunable of a mosaic run.
type Config struct {
	// Width and Height are the target canvas size in pixels. The pair is
	// swapped when the source photo has the other orientation.
	Width  int `toml:"width"`
	Height int `toml:"height"`

	// Redundancy is the average number of times each tile is reused (>= 1).
	Redundancy float64 `toml:"redundancy"`

	// Tilt is the maximum rotation jitter in degrees.
	Tilt int `toml:"tilt"`

	// Shift moves the source crop window off center, from -1 to 1.
	Shift float64 `toml:"shift"`

	// Margin is the oversize applied to donors before cropping.
	Margin float64 `toml:"margin"`

	// Workers bounds parallel donor work. Zero means one less than the CPU count.
	Workers int `toml:"workers"`

	// ColorSpace is "rgb" or "lab".
	ColorSpace string `toml:"color_space"`

	// Background fills the canvas before painting. Empty means transparent.
	Background string `toml:"background"`

	// Flatten is the color behind transparent pixels when saving JPEG.
	Flatten string `toml:"flatten"`

	JPEGQuality int `toml:"jpeg_quality"`

	// Seed drives the rotation jitter. Zero seeds from the clock.
	Seed uint64 `toml:"seed"`

	// TileRatio forces the tile aspect ratio as [w, h]. Empty derives it
	// from the donors.
	TileRatio []int `toml:"tile_ratio"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Width:       6406,
		Height:      4819,
		Redundancy:  1,
		Tilt:        10,
		Shift:       0,
		Margin:      0.10,
		Workers:     0,
		ColorSpace:  string(imaging.SpaceRGB),
		Background:  "",
		Flatten:     "#FFFFFF",
		JPEGQuality: 95,
		Seed:        0,
	}
}

// Ratio returns the forced tile ratio, or nil when none is set.
func (c Config) Ratio() *geometry.Ratio {
	if len(c.TileRatio) != 2 {
		return nil
	}
	return &geometry.Ratio{W: c.TileRatio[0], H: c.TileRatio[1]}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return invalid("width/height", "canvas dimensions must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Redundancy < 1 {
		return invalid("redundancy", "must be >= 1, got %g", c.Redundancy)
	}
	if c.Tilt < 0 || c.Tilt > compose.MaxTilt {
		return invalid("tilt", "must be between 0 and %d, got %d", compose.MaxTilt, c.Tilt)
	}
	if c.Shift < -1 || c.Shift > 1 {
		return invalid("shift", "must be between -1 and 1, got %g", c.Shift)
	}
	if c.Margin < 0 {
		return invalid("margin", "must be >= 0, got %g", c.Margin)
	}
	if c.Workers < 0 {
		return invalid("workers", "must be >= 0, got %d", c.Workers)
	}
	if _, err := imaging.ParseColorSpace(c.ColorSpace); err != nil {
		return invalid("color_space", "%v", err)
	}
	if _, err := imaging.ParseColor(c.Background); err != nil {
		return invalid("background", "%v", err)
	}
	if _, err := imaging.ParseColor(c.Flatten); err != nil {
		return invalid("flatten", "%v", err)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return invalid("jpeg_quality", "must be between 1 and 100, got %d", c.JPEGQuality)
	}
	if c.TileRatio != nil {
		if len(c.TileRatio) != 2 {
			return invalid("tile_ratio", "want [w, h], got %v", c.TileRatio)
		}
		if err := c.Ratio().Validate(); err != nil {
			return invalid("tile_ratio", "%v", err)
		}
	}
	return nil
}

func invalid(field, format string, args ...any) error {
	return merrors.New(merrors.ErrCodeConfiguration, "invalid %s: %s", field, fmt.Sprintf(format, args...))
}

// Stems returns the config file stems from EnvStems, or DefaultStem.
func Stems() []string {
	env := os.Getenv(EnvStems)
	if strings.TrimSpace(env) == "" {
		return []string{DefaultStem}
	}
	var stems []string
	for _, s := range strings.Split(env, ",") {
		if s = strings.TrimSpace(s); s != "" {
			stems = append(stems, s)
		}
	}
	return stems
}

// Load starts from Default and decodes every <location>/<stem>.toml that
// exists, locations outer and stems inner, so a later location overrides an
// earlier one for the same stem. It returns the merged settings
// and the files that were read. It fails when none of the locations is a
// directory or when no file is found.
func Load(stems, locations []string) (Config, []string, error) {
	cfg := Default()

	var dirs []string
	for _, loc := range locations {
		if info, err := os.Stat(loc); err == nil && info.IsDir() {
			dirs = append(dirs, loc)
		}
	}
	if len(dirs) == 0 {
		return cfg, nil, merrors.Wrap(merrors.ErrCodeConfiguration, ErrNotFound, "no config location exists (searched %s)", strings.Join(locations, ", "))
	}

	var files []string
	for _, dir := range dirs {
		for _, stem := range stems {
			path := filepath.Join(dir, stem+".toml")
			_, err := os.Stat(path)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err := decodeFile(path, &cfg); err != nil {
				return cfg, files, err
			}
			files = append(files, path)
		}
	}
	if len(files) == 0 {
		return cfg, nil, merrors.Wrap(merrors.ErrCodeConfiguration, ErrNotFound, "no config file found for %s in %s",
			strings.Join(stems, ", "), strings.Join(dirs, ", "))
	}
	return cfg, files, nil
}

// LoadFile decodes a single file over Default.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if err := decodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return merrors.Wrap(merrors.ErrCodeConfiguration, err, "failed to read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slices.Sort(keys)
		return merrors.New(merrors.ErrCodeConfiguration, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}
