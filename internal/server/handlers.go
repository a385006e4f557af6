package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"time"

	"github.com/ironsheep/photo-mosaic/internal/config"
	"github.com/ironsheep/photo-mosaic/internal/geometry"
	"github.com/ironsheep/photo-mosaic/internal/imaging"
	"github.com/ironsheep/photo-mosaic/internal/mosaic"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "mosaic_build").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall runs a tool and wraps its result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}
	if len(params.Arguments) == 0 {
		params.Arguments = json.RawMessage("{}")
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "err", err)
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]any{
			"content": []map[string]any{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (any, error) {
	switch name {
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_mean_color":
		return s.handleImageMeanColor(args)
	case "mosaic_plan":
		return s.handleMosaicPlan(ctx, args)
	case "mosaic_build":
		return s.handleMosaicBuild(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON. On failure it
// returns an empty string.
func mustMarshalJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image handlers ===

type imagePathArgs struct {
	Path string `json:"path"`
}

type size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func sizeOf(p image.Point) size {
	return size{Width: p.X, Height: p.Y}
}

func (s *Server) loadImage(args json.RawMessage) (image.Image, error) {
	var a imagePathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	s.cache.Evict(a.Path)
	return img, nil
}

func (s *Server) handleImageDimensions(args json.RawMessage) (any, error) {
	img, err := s.loadImage(args)
	if err != nil {
		return nil, err
	}
	return sizeOf(img.Bounds().Size()), nil
}

type meanColorResult struct {
	Hex string    `json:"hex"`
	RGB []float64 `json:"rgb"`
	Lab []float64 `json:"lab"`
}

func (s *Server) handleImageMeanColor(args json.RawMessage) (any, error) {
	img, err := s.loadImage(args)
	if err != nil {
		return nil, err
	}
	mean := imaging.MeanColor(img)
	return meanColorResult{
		Hex: mean.Hex(),
		RGB: mean,
		Lab: imaging.SpaceLab.Project(mean),
	}, nil
}

// === Mosaic handlers ===

// settingsArgs are optional overrides of the server's base settings.
type settingsArgs struct {
	Width      *int     `json:"width"`
	Height     *int     `json:"height"`
	Redundancy *float64 `json:"redundancy"`
	Tilt       *int     `json:"tilt"`
	Shift      *float64 `json:"shift"`
	Ratio      *string  `json:"ratio"`
	Seed       *uint64  `json:"seed"`
	ColorSpace *string  `json:"color_space"`
	Background *string  `json:"background"`
}

// apply returns base with every set override copied in.
func (a settingsArgs) apply(base config.Config) (config.Config, error) {
	cfg := base
	if a.Width != nil {
		cfg.Width = *a.Width
	}
	if a.Height != nil {
		cfg.Height = *a.Height
	}
	if a.Redundancy != nil {
		cfg.Redundancy = *a.Redundancy
	}
	if a.Tilt != nil {
		cfg.Tilt = *a.Tilt
	}
	if a.Shift != nil {
		cfg.Shift = *a.Shift
	}
	if a.Seed != nil {
		cfg.Seed = *a.Seed
	}
	if a.ColorSpace != nil {
		cfg.ColorSpace = *a.ColorSpace
	}
	if a.Background != nil {
		cfg.Background = *a.Background
	}
	if a.Ratio != nil {
		r, err := geometry.ParseRatio(*a.Ratio)
		if err != nil {
			return cfg, err
		}
		cfg.TileRatio = []int{r.W, r.H}
	}
	return cfg, cfg.Validate()
}

type mosaicArgs struct {
	settingsArgs
	Photo    string `json:"photo"`
	TilesDir string `json:"tiles_dir"`
	Output   string `json:"output"`
}

func (s *Server) mosaicOptions(args json.RawMessage) (mosaic.Options, error) {
	var a mosaicArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return mosaic.Options{}, err
	}
	if a.Photo == "" || a.TilesDir == "" {
		return mosaic.Options{}, fmt.Errorf("photo and tiles_dir are required")
	}
	cfg, err := a.apply(s.base)
	if err != nil {
		return mosaic.Options{}, err
	}
	return mosaic.Options{Photo: a.Photo, TilesDir: a.TilesDir, Output: a.Output, Config: cfg}, nil
}

type planResult struct {
	Canvas  size `json:"canvas"`
	Tile    size `json:"tile"`
	Grid    size `json:"grid"`
	Cells   int  `json:"cells"`
	Pool    int  `json:"pool"`
	Skipped int  `json:"skipped"`
	Quota   int  `json:"quota"`
}

func (s *Server) handleMosaicPlan(ctx context.Context, args json.RawMessage) (any, error) {
	opts, err := s.mosaicOptions(args)
	if err != nil {
		return nil, err
	}
	p, err := s.runner.Plan(ctx, opts)
	if err != nil {
		return nil, err
	}
	return planResult{
		Canvas:  sizeOf(p.Canvas),
		Tile:    sizeOf(p.Tile),
		Grid:    sizeOf(p.Grid),
		Cells:   p.Grid.X * p.Grid.Y,
		Pool:    p.Pool,
		Skipped: p.Skipped,
		Quota:   p.Quota,
	}, nil
}

type buildResult struct {
	planResult
	Output       string  `json:"output"`
	MeanDistance float64 `json:"mean_distance"`
	MeanUses     float64 `json:"mean_uses"`
	UsesStdDev   float64 `json:"uses_stddev"`
	DurationMS   int64   `json:"duration_ms"`
}

func (s *Server) handleMosaicBuild(ctx context.Context, args json.RawMessage) (any, error) {
	opts, err := s.mosaicOptions(args)
	if err != nil {
		return nil, err
	}
	if opts.Output == "" {
		return nil, fmt.Errorf("output is required")
	}

	start := time.Now()
	st, err := s.runner.Run(ctx, opts)
	if err != nil {
		return nil, err
	}
	return buildResult{
		planResult: planResult{
			Canvas:  sizeOf(st.Canvas),
			Tile:    sizeOf(st.Tile),
			Grid:    sizeOf(st.Grid),
			Cells:   st.Grid.X * st.Grid.Y,
			Pool:    st.Pool,
			Skipped: st.Skipped,
			Quota:   st.Quota,
		},
		Output:       opts.Output,
		MeanDistance: st.MeanDistance,
		MeanUses:     st.MeanUses,
		UsesStdDev:   st.UsesStdDev,
		DurationMS:   time.Since(start).Milliseconds(),
	}, nil
}
