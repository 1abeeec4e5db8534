package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"path/filepath"

	"github.com/ghjez/ba-backend/internal/detection"
	"github.com/ghjez/ba-backend/internal/imaging"
	"github.com/ghjez/ba-backend/internal/interpret"
	"github.com/ghjez/ba-backend/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "roomstamp_extract").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "roomstamp_load":
		return s.handleLoad(args)
	case "roomstamp_tiles":
		return s.handleTiles(args)
	case "roomstamp_crop":
		return s.handleCrop(args)
	case "roomstamp_detect":
		return s.handleDetect(ctx, args)
	case "roomstamp_parse_lines":
		return s.handleParseLines(args)
	case "roomstamp_extract":
		return s.handleExtract(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type pathArgs struct {
	Path string `json:"path"`
}

func decodePath(args json.RawMessage) (string, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", err
	}
	if a.Path == "" {
		return "", fmt.Errorf("path is required")
	}
	return a.Path, nil
}

func (s *Server) handleLoad(args json.RawMessage) (interface{}, error) {
	path, err := decodePath(args)
	if err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, path)
}

type tilesArgs struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type tilesResult struct {
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Cols   int            `json:"cols"`
	Rows   int            `json:"rows"`
	Tiles  []imaging.Tile `json:"tiles"`
}

func (s *Server) handleTiles(args json.RawMessage) (interface{}, error) {
	var a tilesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path != "" {
		img, err := s.cache.Load(a.Path)
		if err != nil {
			return nil, err
		}
		a.Width, a.Height = img.Bounds().Dx(), img.Bounds().Dy()
	}

	tiler := s.pipe.Tiler()
	tiles, err := tiler.Tiles(a.Width, a.Height)
	if err != nil {
		return nil, err
	}
	cols, rows := tiler.Grid(a.Width, a.Height)
	return &tilesResult{Width: a.Width, Height: a.Height, Cols: cols, Rows: rows, Tiles: tiles}, nil
}

type cropArgs struct {
	Path      string `json:"path"`
	X1        int    `json:"x1"`
	Y1        int    `json:"y1"`
	X2        int    `json:"x2"`
	Y2        int    `json:"y2"`
	MinHeight int    `json:"min_height"`
}

type cropResult struct {
	Box         imaging.Box `json:"box"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	ImageBase64 string      `json:"image_base64"`
}

func (s *Server) handleCrop(args json.RawMessage) (interface{}, error) {
	var a cropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	box := imaging.Box{X1: a.X1, Y1: a.Y1, X2: a.X2, Y2: a.Y2}
	crop, err := imaging.CropSnippet(img, box)
	if err != nil {
		return nil, err
	}
	scaled := imaging.ScaleSnippet(crop, a.MinHeight)

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("failed to encode crop: %w", err)
	}
	return &cropResult{
		Box:         box,
		Width:       scaled.Bounds().Dx(),
		Height:      scaled.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

type detectedElement struct {
	GUID       string      `json:"guid"`
	ClassID    string      `json:"class_id"`
	Confidence float64     `json:"confidence"`
	Box        imaging.Box `json:"bbox_xyxy_abs"`
}

type detectResult struct {
	Tiles         int               `json:"tiles"`
	Raw           int               `json:"raw"`
	LowConfidence int               `json:"low_confidence"`
	Duplicates    int               `json:"duplicates"`
	Elements      []detectedElement `json:"elements"`
}

func (s *Server) handleDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	path, err := decodePath(args)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}

	tiler := s.pipe.Tiler()
	tiles, err := tiler.Tiles(img.Bounds().Dx(), img.Bounds().Dy())
	if err != nil {
		return nil, err
	}
	results, err := detection.DetectTiles(ctx, s.pipe.Detector(), filepath.Base(path), img, tiler, tiles, s.cfg.Detector.Workers)
	if err != nil {
		return nil, err
	}
	dets, stats, err := s.pipe.Merger().Merge(results)
	if err != nil {
		return nil, err
	}

	out := &detectResult{
		Tiles:         stats.Tiles,
		Raw:           stats.Raw,
		LowConfidence: stats.LowConfidence,
		Duplicates:    stats.Duplicates,
		Elements:      make([]detectedElement, len(dets)),
	}
	for i, d := range dets {
		out.Elements[i] = detectedElement{GUID: d.GUID, ClassID: d.ClassID, Confidence: d.Confidence, Box: d.Box}
	}
	return out, nil
}

type parseLinesArgs struct {
	Lines []string `json:"lines"`
}

type parseLinesResult struct {
	Room       interpret.Room `json:"room"`
	Identified bool           `json:"identified"`
}

func (s *Server) handleParseLines(args json.RawMessage) (interface{}, error) {
	var a parseLinesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	room := s.pipe.Parser().ParseLines(a.Lines)
	return &parseLinesResult{Room: room, Identified: room.Identified()}, nil
}

type extractResult struct {
	Image           string          `json:"image"`
	State           string          `json:"state"`
	Elements        int             `json:"elements"`
	Fields          int             `json:"fields"`
	Rooms           interpret.Floor `json:"rooms"`
	VisualPath      string          `json:"visual_path"`
	FloorVisualPath string          `json:"floor_visual_path"`
	CSVPath         string          `json:"csv_path"`
}

func (s *Server) handleExtract(ctx context.Context, args json.RawMessage) (interface{}, error) {
	path, err := decodePath(args)
	if err != nil {
		return nil, err
	}
	res, err := s.pipe.Run(ctx, path)
	if err != nil {
		return nil, err
	}
	return newExtractResult(res), nil
}

func newExtractResult(res *pipeline.ImageResult) *extractResult {
	return &extractResult{
		Image:           res.Image,
		State:           res.State.String(),
		Elements:        len(res.Elements),
		Fields:          len(res.Fields),
		Rooms:           res.Floor,
		VisualPath:      res.VisualPath,
		FloorVisualPath: res.FloorVisualPath,
		CSVPath:         res.CSVPath,
	}
}
