package server

// Tool represents an MCP tool definition.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func pathProperty(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

// settingsProperties are the optional per-call overrides shared by the
// mosaic tools.
func settingsProperties() map[string]any {
	return map[string]any{
		"width":       map[string]any{"type": "integer", "description": "Canvas width in pixels"},
		"height":      map[string]any{"type": "integer", "description": "Canvas height in pixels"},
		"redundancy":  map[string]any{"type": "number", "description": "Average uses per tile (>= 1)"},
		"tilt":        map[string]any{"type": "integer", "description": "Maximum tile rotation in degrees (0-45)"},
		"shift":       map[string]any{"type": "number", "description": "Crop window offset from center (-1 to 1)"},
		"ratio":       map[string]any{"type": "string", "description": "Tile aspect ratio as W:H, e.g. 3:4"},
		"seed":        map[string]any{"type": "integer", "description": "Rotation seed (0 = time based)"},
		"color_space": map[string]any{"type": "string", "enum": []string{"rgb", "lab"}, "description": "Color matching space"},
		"background":  map[string]any{"type": "string", "description": "Canvas background as #RRGGBB, empty for transparent"},
	}
}

func mosaicSchema(required []string, extra map[string]any) map[string]any {
	props := settingsProperties()
	props["photo"] = pathProperty("Absolute path to the source photo")
	props["tiles_dir"] = pathProperty("Directory searched recursively for donor images")
	for k, v := range extra {
		props[k] = v
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

// GetToolDefinitions returns all available tools.
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file, after EXIF orientation.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_mean_color",
			Description: "Get the average color of an image as hex, RGB (0-255) and CIE L*a*b*.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "mosaic_plan",
			Description: "Compute the canvas, tile and grid sizes a mosaic would use, without building it.",
			InputSchema: mosaicSchema([]string{"photo", "tiles_dir"}, nil),
		},
		{
			Name:        "mosaic_build",
			Description: "Build a photo mosaic from a source photo and a directory of donor images and save it.",
			InputSchema: mosaicSchema([]string{"photo", "tiles_dir", "output"}, map[string]any{
				"output": pathProperty("Output file; the format follows the extension"),
			}),
		},
	}
}

func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]any{
			"tools": GetToolDefinitions(),
		},
	}
}
