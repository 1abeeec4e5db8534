package detection

import (
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ghjez/ba-backend/internal/errors"
	"github.com/ghjez/ba-backend/internal/logger"
)

// DefaultMinConfidence is the detector confidence below which detections
// are discarded.
const DefaultMinConfidence = 0.5

// IDFunc returns a fresh identifier for a detection.
type IDFunc func() string

// SequentialIDs returns an IDFunc producing prefix-0001, prefix-0002, ...
// It exists for reproducible output in tests and fixtures.
func SequentialIDs(prefix string) IDFunc {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("%s-%04d", prefix, n.Add(1))
	}
}

// MergeStats counts what Merge kept and dropped.
type MergeStats struct {
	Tiles         int
	Raw           int
	LowConfidence int
	Duplicates    int
	Kept          int
}

// Merger turns per-tile detector output into one ordered detection list in
// drawing coordinates.
type Merger struct {
	// MinConfidence drops detections with a lower confidence.
	MinConfidence float64
	// DedupIoU, when positive, suppresses detections from different tiles
	// overlapping at least this much; the more confident one survives.
	DedupIoU float64
	// NewID assigns identifiers; defaults to random UUIDs.
	NewID IDFunc
}

// NewMerger creates a Merger with UUID identifiers.
func NewMerger(minConfidence, dedupIoU float64) *Merger {
	return &Merger{MinConfidence: minConfidence, DedupIoU: dedupIoU, NewID: uuid.NewString}
}

type candidate struct {
	tile int
	det  GlobalDetection
}

// Merge filters, remaps, identifies and orders the detections of all tiles.
//
// The result is sorted by the top edge of the box, ascending; ties keep
// insertion order (tile order, then detector order within the tile).
func (m *Merger) Merge(results []TileResult) ([]GlobalDetection, MergeStats, error) {
	log := logger.Module("merger")
	stats := MergeStats{Tiles: len(results)}

	seen := make(map[int]bool, len(results))
	var cands []candidate
	for _, res := range results {
		if seen[res.Tile.ID] {
			return nil, stats, errors.NewInputError("merge detections", fmt.Sprintf("tile %d reported twice", res.Tile.ID), nil)
		}
		seen[res.Tile.ID] = true

		for _, det := range res.Detections {
			stats.Raw++
			if math.IsNaN(det.Confidence) {
				return nil, stats, errors.NewStageFailure(errors.StageMerge,
					fmt.Errorf("tile %d: detection without confidence", res.Tile.ID))
			}
			if det.Confidence < m.MinConfidence {
				stats.LowConfidence++
				continue
			}
			cands = append(cands, candidate{
				tile: res.Tile.ID,
				det: GlobalDetection{
					ClassID:    det.ClassID,
					Confidence: det.Confidence,
					Box:        res.Tile.ToGlobal(det.Box),
				},
			})
		}
	}

	if m.DedupIoU > 0 {
		var dropped int
		cands, dropped = m.suppressDuplicates(cands)
		stats.Duplicates = dropped
	}

	newID := m.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	out := make([]GlobalDetection, len(cands))
	for i, c := range cands {
		c.det.GUID = newID()
		out[i] = c.det
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Box.Y1 < out[j].Box.Y1
	})

	stats.Kept = len(out)
	log.Debug("merged tile detections",
		"tiles", stats.Tiles,
		"raw", stats.Raw,
		"low_confidence", stats.LowConfidence,
		"duplicates", stats.Duplicates,
		"kept", stats.Kept)
	return out, stats, nil
}

// suppressDuplicates drops the weaker of two detections from different
// tiles whose global boxes overlap by at least DedupIoU. On equal confidence
// the earlier detection survives.
func (m *Merger) suppressDuplicates(cands []candidate) ([]candidate, int) {
	drop := make([]bool, len(cands))
	for i := range cands {
		if drop[i] {
			continue
		}
		for j := i + 1; j < len(cands); j++ {
			if drop[j] || cands[i].tile == cands[j].tile {
				continue
			}
			if cands[i].det.Box.IoU(cands[j].det.Box) < m.DedupIoU {
				continue
			}
			if cands[j].det.Confidence > cands[i].det.Confidence {
				drop[i] = true
				break
			}
			drop[j] = true
		}
	}

	kept := cands[:0:0]
	for i, c := range cands {
		if !drop[i] {
			kept = append(kept, c)
		}
	}
	return kept, len(cands) - len(kept)
}
