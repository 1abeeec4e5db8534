package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the drawing",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "roomstamp_load",
			Description: "Load a drawing and return its dimensions, format and file size. The decoded drawing is cached for subsequent calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "roomstamp_tiles",
			Description: "Return the tile grid the detector sees for a drawing, either from a path or from explicit width and height.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"width":  map[string]interface{}{"type": "integer", "description": "Image width when no path is given"},
					"height": map[string]interface{}{"type": "integer", "description": "Image height when no path is given"},
				},
			},
		},
		{
			Name:        "roomstamp_crop",
			Description: "Crop a box from a drawing and return it as base64-encoded PNG, e.g. to inspect a room stamp.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x1":   map[string]interface{}{"type": "integer", "description": "Left edge X coordinate"},
					"y1":   map[string]interface{}{"type": "integer", "description": "Top edge Y coordinate"},
					"x2":   map[string]interface{}{"type": "integer", "description": "Right edge X coordinate (exclusive)"},
					"y2":   map[string]interface{}{"type": "integer", "description": "Bottom edge Y coordinate (exclusive)"},
					"min_height": map[string]interface{}{
						"type":        "integer",
						"description": "Upscale crops lower than this many pixels. Default 0 (no scaling)",
						"default":     0,
					},
				},
				"required": []string{"path", "x1", "y1", "x2", "y2"},
			},
		},
		{
			Name:        "roomstamp_detect",
			Description: "Run the configured text detector over all tiles of a drawing and return the merged text element boxes in drawing coordinates, top to bottom.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "roomstamp_parse_lines",
			Description: "Interpret the text lines of one room stamp and return the room attributes (name, code, area, height).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"lines": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Stamp lines in reading order",
					},
				},
				"required": []string{"lines"},
			},
		},
		{
			Name:        "roomstamp_extract",
			Description: "Run the full extraction on a drawing and return its rooms. Visual results, the floor table and the copy of the drawing are written to the configured output directory.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
	}
}
