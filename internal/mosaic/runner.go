package mosaic

import (
	"context"
	"fmt"
	"image"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/photo-mosaic/internal/assign"
	"github.com/ironsheep/photo-mosaic/internal/compose"
	"github.com/ironsheep/photo-mosaic/internal/config"
	merrors "github.com/ironsheep/photo-mosaic/internal/errors"
	"github.com/ironsheep/photo-mosaic/internal/feeder"
	"github.com/ironsheep/photo-mosaic/internal/geometry"
	"github.com/ironsheep/photo-mosaic/internal/imaging"
)

// Options describes one mosaic run.
type Options struct {
	// Photo is the source photograph.
	Photo string

	// TilesDir is searched recursively for donor images.
	TilesDir string

	// Output is where Run saves the mosaic. Build ignores it.
	Output string

	Config config.Config
}

// Stats summarizes a run.
type Stats struct {
	Pool    int // donors that decoded
	Skipped int // donors that failed to decode

	Canvas image.Point
	Tile   image.Point
	Grid   image.Point
	Quota  int // initial per-tile quota

	MeanDistance float64 // average color distance of the chosen edges
	MeanUses     float64 // average number of cells per tile
	UsesStdDev   float64

	LoadTime    time.Duration
	FeedTime    time.Duration
	SolveTime   time.Duration
	ComposeTime time.Duration
	SaveTime    time.Duration
}

// Result is the outcome of Build.
type Result struct {
	Canvas     *image.RGBA
	Assignment *assign.Assignment

	// Preview holds the RGB target color of every cell.
	Preview assign.Preview

	Stats Stats
}

// Runner executes mosaic runs. It holds no per-run state besides the image
// cache, so one Runner may serve several sequential runs.
type Runner struct {
	Cache  *imaging.ImageCache
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache or logger is replaced by a fresh
// cache or log.Default().
func NewRunner(cache *imaging.ImageCache, logger *log.Logger) *Runner {
	if cache == nil {
		cache = imaging.NewImageCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: cache, Logger: logger}
}

// Run builds the mosaic and saves it to opts.Output.
func (r *Runner) Run(ctx context.Context, opts Options) (*Stats, error) {
	if opts.Output == "" {
		return nil, merrors.New(merrors.ErrCodeConfiguration, "no output path given")
	}
	flatten, err := imaging.ParseColor(opts.Config.Flatten)
	if err != nil {
		return nil, err
	}

	res, err := r.Build(ctx, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if err := imaging.Save(res.Canvas, opts.Output, imaging.SaveOptions{
		Flatten:     flatten,
		JPEGQuality: opts.Config.JPEGQuality,
	}); err != nil {
		return nil, err
	}
	res.Stats.SaveTime = time.Since(start)

	r.Logger.Info("saved mosaic", "path", opts.Output, "duration", res.Stats.SaveTime.Round(time.Millisecond))
	return &res.Stats, nil
}

// Plan is the geometry of a run, known before any tile is fed.
type Plan struct {
	Canvas  image.Point
	Tile    image.Point
	Grid    image.Point
	Pool    int
	Skipped int
	Quota   int
}

// prepared carries the photo and the surveyed donors from the load stage to
// the others.
type prepared struct {
	plan     Plan
	src      image.Image
	donors   []imaging.Donor
	workers  int
	loadTime time.Duration
}

// Plan loads the photo and surveys the donor pool, then computes the canvas,
// tile and grid sizes without feeding or compositing anything.
func (r *Runner) Plan(ctx context.Context, opts Options) (*Plan, error) {
	p, err := r.prepare(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &p.plan, nil
}

func (r *Runner) prepare(ctx context.Context, opts Options) (*prepared, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &prepared{workers: cfg.Workers}
	if p.workers == 0 {
		p.workers = feeder.DefaultWorkers()
	}

	start := time.Now()
	src, err := r.Cache.Load(opts.Photo)
	if err != nil {
		return nil, err
	}
	r.Cache.Evict(opts.Photo)
	p.src = src

	canvas := geometry.AutoSwitch(src.Bounds().Size(), image.Pt(cfg.Width, cfg.Height))
	if err := geometry.ValidateCanvas(canvas); err != nil {
		return nil, err
	}

	paths, err := imaging.ListImages(opts.TilesDir)
	if err != nil {
		return nil, err
	}
	skipped := 0
	donors, err := imaging.LoadDonors(ctx, paths, p.workers, func(path string, err error) {
		skipped++
		r.Logger.Warn("skipping donor", "path", path, "err", err)
	})
	if err != nil {
		return nil, err
	}
	if len(donors) == 0 {
		return nil, merrors.New(merrors.ErrCodeConfiguration, "tile pool is empty: no usable images in %s", opts.TilesDir)
	}
	p.donors = donors
	p.loadTime = time.Since(start)

	r.Logger.Info("loaded images",
		"photo", opts.Photo,
		"donors", len(donors),
		"skipped", skipped,
		"duration", p.loadTime.Round(time.Millisecond))

	tile, err := geometry.TileSize(len(donors), imaging.Sizes(donors), canvas, cfg.Ratio(), cfg.Redundancy)
	if err != nil {
		return nil, err
	}
	grid := geometry.GridSize(canvas, tile)
	cells := grid.X * grid.Y

	p.plan = Plan{
		Canvas:  canvas,
		Tile:    tile,
		Grid:    grid,
		Pool:    len(donors),
		Skipped: skipped,
		Quota:   (cells + len(donors) - 1) / len(donors),
	}

	r.Logger.Info("planned geometry",
		"canvas", fmt.Sprintf("%dx%d", canvas.X, canvas.Y),
		"tile", fmt.Sprintf("%dx%d", tile.X, tile.Y),
		"grid", fmt.Sprintf("%dx%d", grid.X, grid.Y))
	return p, nil
}

// Build runs every stage up to compositing and returns the canvas.
func (r *Runner) Build(ctx context.Context, opts Options) (*Result, error) {
	p, err := r.prepare(ctx, opts)
	if err != nil {
		return nil, err
	}
	cfg := opts.Config
	space, err := imaging.ParseColorSpace(cfg.ColorSpace)
	if err != nil {
		return nil, err
	}
	background, err := imaging.ParseColor(cfg.Background)
	if err != nil {
		return nil, err
	}

	stats := Stats{
		Pool:     p.plan.Pool,
		Skipped:  p.plan.Skipped,
		Canvas:   p.plan.Canvas,
		Tile:     p.plan.Tile,
		Grid:     p.plan.Grid,
		LoadTime: p.loadTime,
	}
	canvas, tile, grid := p.plan.Canvas, p.plan.Tile, p.plan.Grid

	preview := assign.NewPreview(imaging.Shrink(imaging.CropToAspect(p.src, canvas, cfg.Shift), grid))

	start := time.Now()
	donors := p.donors
	load := func(i int) (image.Image, error) {
		return imaging.Open(donors[i].Path)
	}
	tiles, err := feeder.Feed(ctx, len(donors), load, tile, feeder.Options{
		Workers: p.workers,
		Margin:  cfg.Margin,
	})
	if err != nil {
		return nil, err
	}
	means := imaging.MeanColors(tiles)
	stats.FeedTime = time.Since(start)

	r.Logger.Info("fed tiles", "count", len(tiles), "duration", stats.FeedTime.Round(time.Millisecond))

	start = time.Now()
	assignment, err := assign.Solve(ctx, preview.Project(space), space.ProjectAll(means))
	if err != nil {
		return nil, err
	}
	stats.SolveTime = time.Since(start)
	stats.Quota = assignment.InitialQuota
	stats.MeanDistance = assignment.MeanDistance()
	stats.MeanUses, stats.UsesStdDev = useStats(assignment.Uses())

	r.Logger.Info("solved assignment",
		"cells", grid.X*grid.Y,
		"quota", stats.Quota,
		"color_space", space,
		"mean_distance", fmt.Sprintf("%.2f", stats.MeanDistance),
		"duration", stats.SolveTime.Round(time.Millisecond))

	start = time.Now()
	out, err := compose.Composite(ctx, compose.Input{
		Canvas:     canvas,
		Tile:       tile,
		Tiles:      tiles,
		Means:      means,
		Preview:    preview,
		Assignment: assignment,
		Tilt:       cfg.Tilt,
		Background: background,
		Rand:       newRand(cfg.Seed),
		Progress:   r.progress(),
	})
	if err != nil {
		return nil, err
	}
	stats.ComposeTime = time.Since(start)

	r.Logger.Info("composited mosaic", "tilt", cfg.Tilt, "duration", stats.ComposeTime.Round(time.Millisecond))

	return &Result{Canvas: out, Assignment: assignment, Preview: preview, Stats: stats}, nil
}

// progress logs compositing progress at debug level in steps of 10%.
func (r *Runner) progress() func(done, total int) {
	next := 10
	return func(done, total int) {
		pct := done * 100 / total
		if pct >= next {
			r.Logger.Debug("compositing", "done", done, "total", total, "percent", pct)
			next = pct/10*10 + 10
		}
	}
}

// newRand returns a PCG generator for seed, or a clock-seeded one for zero.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed))
}

func useStats(uses []int) (mean, std float64) {
	if len(uses) == 0 {
		return 0, 0
	}
	xs := make([]float64, len(uses))
	for i, u := range uses {
		xs[i] = float64(u)
	}
	if len(xs) == 1 {
		return xs[0], 0
	}
	return stat.MeanStdDev(xs, nil)
}
