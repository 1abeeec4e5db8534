// Package export writes the per-run result files: results.json with the
// detected elements and fields of every drawing, floor.json with the
// recovered rooms, and one CSV table of rooms per drawing.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ghjez/ba-backend/internal/detection"
	"github.com/ghjez/ba-backend/internal/errors"
	"github.com/ghjez/ba-backend/internal/field"
	"github.com/ghjez/ba-backend/internal/imaging"
	"github.com/ghjez/ba-backend/internal/interpret"
)

// Element is the exported form of a recognized text element. Class and
// confidence are strings in the file format.
type Element struct {
	GUID       string      `json:"guid"`
	ClassID    string      `json:"class_id"`
	Confidence string      `json:"confidence"`
	Box        imaging.Box `json:"bbox_xyxy_abs"`
	Text       string      `json:"text"`
}

// ImageRecord is the results.json entry of one drawing.
type ImageRecord struct {
	VisualResultPath string        `json:"visual_result_path"`
	Elements         []Element     `json:"elements"`
	Fields           []field.Field `json:"fields"`
}

// Results maps drawing file names to their records.
type Results map[string]ImageRecord

// Floors maps drawing file names to their rooms.
type Floors map[string]interpret.Floor

// NewImageRecord builds the record of one drawing.
func NewImageRecord(visualPath string, elems []detection.TextElement, fields []field.Field) ImageRecord {
	rec := ImageRecord{
		VisualResultPath: filepath.ToSlash(visualPath),
		Elements:         make([]Element, 0, len(elems)),
		Fields:           fields,
	}
	if rec.Fields == nil {
		rec.Fields = []field.Field{}
	}
	for _, e := range elems {
		rec.Elements = append(rec.Elements, Element{
			GUID:       e.GUID,
			ClassID:    e.ClassID,
			Confidence: e.ConfidenceString(),
			Box:        e.Box,
			Text:       e.Text,
		})
	}
	return rec
}

// WriteJSON writes v with four-space indentation. The file is replaced
// atomically so readers never see a partial result.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return errors.NewStageFailure(errors.StageExport, fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err))
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.NewStageFailure(errors.StageExport, fmt.Errorf("failed to create temp file: %w", err))
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return errors.NewStageFailure(errors.StageExport, fmt.Errorf("failed to write %s: %w", filepath.Base(path), err))
	}
	if err := tmp.Close(); err != nil {
		return errors.NewStageFailure(errors.StageExport, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.NewStageFailure(errors.StageExport, fmt.Errorf("failed to move %s into place: %w", filepath.Base(path), err))
	}
	return nil
}

// ReadResults loads a results.json file.
func ReadResults(path string) (Results, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewInputError("read results", path, err)
	}
	var res Results
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, errors.NewInputError("read results", "malformed "+filepath.Base(path), err)
	}
	return res, nil
}

// CSVName returns the floor table file name for a drawing,
// e.g. "floor_EG.csv" for "EG.png".
func CSVName(image string) string {
	base := filepath.Base(image)
	return "floor_" + strings.TrimSuffix(base, filepath.Ext(base)) + ".csv"
}

// WriteFloorCSV writes the floor table of one drawing into dir and returns
// the file path.
func WriteFloorCSV(dir, image string, floor interpret.Floor) (string, error) {
	path := filepath.Join(dir, CSVName(image))
	f, err := os.Create(path)
	if err != nil {
		return "", errors.NewStageFailure(errors.StageExport, fmt.Errorf("failed to create %s: %w", filepath.Base(path), err))
	}
	if err := floor.WriteCSV(f); err != nil {
		f.Close()
		os.Remove(path)
		return "", errors.NewStageFailure(errors.StageExport, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", errors.NewStageFailure(errors.StageExport, err)
	}
	return path, nil
}
