package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ironsheep/photo-mosaic/internal/config"
	"github.com/ironsheep/photo-mosaic/internal/geometry"
	"github.com/ironsheep/photo-mosaic/internal/imaging"
	"github.com/ironsheep/photo-mosaic/internal/mosaic"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// SetVersion sets the version information shown by --version. main calls it
// with values injected through ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the command line with os.Args and returns the first error.
func Execute(ctx context.Context) error {
	return newRootCommand(os.Stderr).ExecuteContext(ctx)
}

// flags holds the raw flag values. Only flags the user actually set are
// applied over the loaded config.
type flags struct {
	output     string
	configPath string
	verbose    bool

	width      int
	height     int
	redundancy float64
	tilt       int
	shift      float64
	ratio      string
	seed       uint64
	workers    int
	colorSpace string
	background string
}

func newRootCommand(logOut io.Writer) *cobra.Command {
	var f flags
	def := config.Default()

	cmd := &cobra.Command{
		Use:   "photo-mosaic [flags] <photo> <tiles-dir>",
		Short: "Rebuild a photo as a mosaic of smaller images",
		Long: `photo-mosaic splits a photo into a grid and fills each cell with the donor
image whose average color matches best. Every donor is used about the same
number of times, each tile is tinted toward its cell color and given a small
random tilt.`,
		Version:       version,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if f.verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(logOut, level)))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0], args[1], f, cmd.Flags().Changed)
		},
	}
	cmd.SetVersionTemplate(fmt.Sprintf("photo-mosaic %s\ncommit: %s\nbuilt: %s\n", version, commit, date))

	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "config file (default: search "+config.EnvStems+" stems in . and config/)")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "enable verbose logging")

	fl := cmd.Flags()
	fl.StringVarP(&f.output, "output", "o", "mosaic.jpg", "output file (format from extension)")
	fl.IntVar(&f.width, "width", def.Width, "canvas width in pixels")
	fl.IntVar(&f.height, "height", def.Height, "canvas height in pixels")
	fl.Float64VarP(&f.redundancy, "redundancy", "r", def.Redundancy, "average uses per tile (>= 1)")
	fl.IntVar(&f.tilt, "tilt", def.Tilt, "maximum tile rotation in degrees")
	fl.Float64Var(&f.shift, "shift", def.Shift, "crop window offset from center (-1 to 1)")
	fl.StringVar(&f.ratio, "ratio", "", "tile aspect ratio W:H (default: median of donors)")
	fl.Uint64Var(&f.seed, "seed", def.Seed, "random seed for tile rotation (0 = time based)")
	fl.IntVar(&f.workers, "workers", def.Workers, "parallel donor workers (0 = CPU count - 1)")
	fl.StringVar(&f.colorSpace, "color-space", def.ColorSpace, "color matching space: rgb or lab")
	fl.StringVar(&f.background, "background", def.Background, "canvas background color, e.g. #000000 (default transparent)")

	cmd.AddCommand(newServeCommand(&f))
	return cmd
}

func run(ctx context.Context, photo, tilesDir string, f flags, changed func(string) bool) error {
	logger := loggerFromContext(ctx)
	p := newProgress(logger)

	cfg, err := loadConfig(logger, f.configPath)
	if err != nil {
		return err
	}
	if err := applyFlags(&cfg, f, changed); err != nil {
		return err
	}

	runner := mosaic.NewRunner(imaging.NewImageCache(), logger)
	stats, err := runner.Run(ctx, mosaic.Options{
		Photo:    photo,
		TilesDir: tilesDir,
		Output:   f.output,
		Config:   cfg,
	})
	if err != nil {
		return err
	}

	p.done("mosaic complete",
		"output", f.output,
		"tiles", stats.Pool,
		"cells", stats.Grid.X*stats.Grid.Y,
		"mean_uses", fmt.Sprintf("%.2f", stats.MeanUses))
	return nil
}

// loadConfig reads an explicit config file, or searches the default
// locations. Finding no file in the default locations is not an error.
func loadConfig(logger *charmlog.Logger, path string) (config.Config, error) {
	if path != "" {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return cfg, err
		}
		logger.Debug("loaded config", "file", path)
		return cfg, nil
	}

	cfg, files, err := config.Load(config.Stems(), config.DefaultLocations)
	if errors.Is(err, config.ErrNotFound) {
		logger.Debug("no config file found, using defaults")
		return config.Default(), nil
	}
	if err != nil {
		return cfg, err
	}
	logger.Debug("loaded config", "files", files)
	return cfg, nil
}

// applyFlags copies every flag the user set onto cfg.
func applyFlags(cfg *config.Config, f flags, changed func(string) bool) error {
	if changed("width") {
		cfg.Width = f.width
	}
	if changed("height") {
		cfg.Height = f.height
	}
	if changed("redundancy") {
		cfg.Redundancy = f.redundancy
	}
	if changed("tilt") {
		cfg.Tilt = f.tilt
	}
	if changed("shift") {
		cfg.Shift = f.shift
	}
	if changed("seed") {
		cfg.Seed = f.seed
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("color-space") {
		cfg.ColorSpace = f.colorSpace
	}
	if changed("background") {
		cfg.Background = f.background
	}
	if changed("ratio") {
		r, err := geometry.ParseRatio(f.ratio)
		if err != nil {
			return err
		}
		cfg.TileRatio = []int{r.W, r.H}
	}
	return cfg.Validate()
}
