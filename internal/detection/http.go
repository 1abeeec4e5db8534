package detection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HTTPDetector sends tiles to an inference service that wraps the text
// detection model.
//
// Each tile is POSTed as multipart form with the PNG under "file" and the
// tile id under "tile_id". The service answers with normalized boxes:
//
//	{"detections": [{"class_id": 0, "x_center": 0.1, "y_center": 0.2,
//	                 "width": 0.05, "height": 0.02, "confidence": 0.93}]}
type HTTPDetector struct {
	URL    string
	Client *http.Client
}

// NewHTTPDetector creates a detector for the inference endpoint url.
func NewHTTPDetector(url string, timeout time.Duration) *HTTPDetector {
	return &HTTPDetector{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

type httpDetection struct {
	ClassID    json.Number `json:"class_id"`
	XCenter    float64     `json:"x_center"`
	YCenter    float64     `json:"y_center"`
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	Confidence float64     `json:"confidence"`
}

// Detect implements Detector.
func (d *HTTPDetector) Detect(ctx context.Context, req TileRequest) ([]RawDetection, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", fmt.Sprintf("tile_%d.png", req.Tile.ID))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if err := png.Encode(part, req.Raster); err != nil {
		return nil, fmt.Errorf("encode tile: %w", err)
	}
	if err := writer.WriteField("tile_id", strconv.Itoa(req.Tile.ID)); err != nil {
		return nil, fmt.Errorf("write tile id: %w", err)
	}
	if req.Image != "" {
		if err := writer.WriteField("image", req.Image); err != nil {
			return nil, fmt.Errorf("write image name: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.client().Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("inference failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result struct {
		Detections []httpDetection `json:"detections"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	out := make([]RawDetection, 0, len(result.Detections))
	for i, hd := range result.Detections {
		if hd.Confidence < 0 || hd.Confidence > 1 {
			return nil, fmt.Errorf("detection %d: confidence %v outside [0, 1]", i, hd.Confidence)
		}
		if hd.ClassID == "" {
			return nil, fmt.Errorf("detection %d: missing class_id", i)
		}
		out = append(out, RawDetection{
			ClassID:    hd.ClassID.String(),
			Confidence: hd.Confidence,
			Box:        RelativeToLocal(hd.XCenter, hd.YCenter, hd.Width, hd.Height, req.Tile.Size),
		})
	}
	return out, nil
}

// CheckHealth probes <url>/health.
func (d *HTTPDetector) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(d.URL, "/")+"/health", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := d.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("detector service unhealthy: %d", resp.StatusCode)
	}
	return nil
}

func (d *HTTPDetector) client() *http.Client {
	if d.Client != nil {
		return d.Client
	}
	return http.DefaultClient
}
