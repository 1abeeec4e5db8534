package detection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghjez/ba-backend/internal/errors"
	"github.com/ghjez/ba-backend/internal/imaging"
)

func twoTileGrid(t *testing.T) []imaging.Tile {
	t.Helper()
	tiler, err := imaging.NewTiler(640, 0)
	require.NoError(t, err)
	tiles, err := tiler.Tiles(1280, 640)
	require.NoError(t, err)
	require.Len(t, tiles, 2)
	return tiles
}

func raw(class string, conf float64, x1, y1, x2, y2 int) RawDetection {
	return RawDetection{ClassID: class, Confidence: conf, Box: imaging.Box{X1: x1, Y1: y1, X2: x2, Y2: y2}}
}

func TestMerge_RemapsToGlobal(t *testing.T) {
	tiles := twoTileGrid(t)
	m := &Merger{MinConfidence: DefaultMinConfidence, NewID: SequentialIDs("det")}

	dets, stats, err := m.Merge([]TileResult{
		{Tile: tiles[0]},
		{Tile: tiles[1], Detections: []RawDetection{raw("0", 0.9, 10, 10, 50, 30)}},
	})
	require.NoError(t, err)
	require.Len(t, dets, 1)

	assert.Equal(t, imaging.Box{X1: 650, Y1: 10, X2: 690, Y2: 30}, dets[0].Box)
	assert.Equal(t, "det-0001", dets[0].GUID)
	assert.Equal(t, "0", dets[0].ClassID)
	assert.Equal(t, MergeStats{Tiles: 2, Raw: 1, Kept: 1}, stats)
}

func TestMerge_ConfidenceThreshold(t *testing.T) {
	tiles := twoTileGrid(t)
	m := &Merger{MinConfidence: 0.5, NewID: SequentialIDs("d")}

	dets, stats, err := m.Merge([]TileResult{{
		Tile: tiles[0],
		Detections: []RawDetection{
			raw("0", 0.49, 0, 0, 10, 10),
			raw("0", 0.5, 0, 20, 10, 30),
			raw("0", 0.2, 0, 40, 10, 50),
		},
	}})
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, 20, dets[0].Box.Y1, "confidence equal to the threshold is kept")
	assert.Equal(t, 2, stats.LowConfidence)
}

func TestMerge_SortsByTopEdgeStable(t *testing.T) {
	tiles := twoTileGrid(t)
	m := &Merger{MinConfidence: 0.5, NewID: SequentialIDs("d")}

	dets, _, err := m.Merge([]TileResult{
		{Tile: tiles[0], Detections: []RawDetection{
			raw("a", 0.9, 0, 300, 10, 310),
			raw("b", 0.9, 0, 100, 10, 110),
		}},
		{Tile: tiles[1], Detections: []RawDetection{
			raw("c", 0.9, 0, 100, 10, 110),
			raw("d", 0.9, 0, 5, 10, 15),
		}},
	})
	require.NoError(t, err)

	var order []string
	for _, d := range dets {
		order = append(order, d.ClassID)
	}
	// b and c share a top edge and keep tile order.
	assert.Equal(t, []string{"d", "b", "c", "a"}, order)
	for i := 1; i < len(dets); i++ {
		assert.LessOrEqual(t, dets[i-1].Box.Y1, dets[i].Box.Y1)
	}
}

func TestMerge_UniqueIDs(t *testing.T) {
	tiles := twoTileGrid(t)
	m := NewMerger(0.5, 0)

	var in []RawDetection
	for i := 0; i < 50; i++ {
		in = append(in, raw("0", 0.9, i, i, i+10, i+10))
	}
	dets, _, err := m.Merge([]TileResult{{Tile: tiles[0], Detections: in}})
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, d := range dets {
		assert.NotEmpty(t, d.GUID)
		assert.False(t, seen[d.GUID], "duplicate id %s", d.GUID)
		seen[d.GUID] = true
	}
}

func TestMerge_DuplicateTile(t *testing.T) {
	tiles := twoTileGrid(t)
	_, _, err := NewMerger(0.5, 0).Merge([]TileResult{{Tile: tiles[0]}, {Tile: tiles[0]}})
	require.Error(t, err)
	assert.True(t, errors.IsInputError(err))
}

func TestMerge_MissingConfidence(t *testing.T) {
	tiles := twoTileGrid(t)
	_, _, err := NewMerger(0.5, 0).Merge([]TileResult{{
		Tile:       tiles[0],
		Detections: []RawDetection{raw("0", math.NaN(), 0, 0, 1, 1)},
	}})
	require.Error(t, err)
	stage, ok := errors.StageOf(err)
	require.True(t, ok)
	assert.Equal(t, errors.StageMerge, stage)
}

func TestMerge_Dedup(t *testing.T) {
	tiler, err := imaging.NewTiler(640, 40)
	require.NoError(t, err)
	tiles, err := tiler.Tiles(1240, 640)
	require.NoError(t, err)
	require.Len(t, tiles, 2)
	require.Equal(t, 600, tiles[1].X)

	// The same word seen in the overlap by both tiles.
	results := []TileResult{
		{Tile: tiles[0], Detections: []RawDetection{raw("0", 0.7, 605, 10, 635, 30)}},
		{Tile: tiles[1], Detections: []RawDetection{raw("0", 0.9, 5, 10, 35, 30)}},
	}

	t.Run("disabled", func(t *testing.T) {
		dets, _, err := NewMerger(0.5, 0).Merge(results)
		require.NoError(t, err)
		assert.Len(t, dets, 2)
	})

	t.Run("enabled", func(t *testing.T) {
		dets, stats, err := NewMerger(0.5, 0.5).Merge(results)
		require.NoError(t, err)
		require.Len(t, dets, 1)
		assert.Equal(t, 0.9, dets[0].Confidence)
		assert.Equal(t, 1, stats.Duplicates)
	})
}

func TestMerge_Empty(t *testing.T) {
	dets, stats, err := NewMerger(0.5, 0).Merge(nil)
	require.NoError(t, err)
	assert.Empty(t, dets)
	assert.Zero(t, stats.Kept)
}

func TestConfidenceString(t *testing.T) {
	d := GlobalDetection{Confidence: 0.87}
	assert.Equal(t, "0.87", d.ConfidenceString())
}
