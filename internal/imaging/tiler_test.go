package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghjez/ba-backend/internal/errors"
)

// createGradientImage creates an image where every pixel is distinct enough
// to catch misplaced tiles.
func createGradientImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x), uint8(y), uint8(x ^ y), 255})
		}
	}
	return img
}

func TestNewTiler_Invalid(t *testing.T) {
	tests := []struct {
		name          string
		size, overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -5, 0},
		{"negative overlap", 64, -1},
		{"overlap equals size", 64, 64},
		{"overlap larger than size", 64, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTiler(tt.size, tt.overlap)
			require.Error(t, err)
			assert.True(t, errors.IsInputError(err))
		})
	}
}

func TestTiles_TwoTileScenario(t *testing.T) {
	tiler, err := NewTiler(640, 0)
	require.NoError(t, err)

	tiles, err := tiler.Tiles(1280, 640)
	require.NoError(t, err)
	require.Len(t, tiles, 2)

	assert.Equal(t, Box{0, 0, 640, 640}, tiles[0].Bounds())
	assert.Equal(t, Box{640, 0, 1280, 640}, tiles[1].Bounds())
	assert.False(t, tiles[1].PadRight)
	assert.False(t, tiles[1].PadBottom)
}

func TestTiles_PaddedEdges(t *testing.T) {
	tiler, err := NewTiler(100, 0)
	require.NoError(t, err)

	tiles, err := tiler.Tiles(250, 120)
	require.NoError(t, err)

	cols, rows := tiler.Grid(250, 120)
	assert.Equal(t, 3, cols)
	assert.Equal(t, 2, rows)
	require.Len(t, tiles, 6)

	last := tiles[5]
	assert.Equal(t, 5, last.ID)
	assert.Equal(t, 1, last.Row)
	assert.Equal(t, 2, last.Col)
	assert.Equal(t, 200, last.X)
	assert.Equal(t, 100, last.Y)
	assert.Equal(t, 50, last.Width)
	assert.Equal(t, 20, last.Height)
	assert.True(t, last.PadRight)
	assert.True(t, last.PadBottom)

	assert.False(t, tiles[0].PadRight)
	assert.True(t, tiles[2].PadRight)
	assert.False(t, tiles[2].PadBottom)
}

func TestTiles_Overlap(t *testing.T) {
	tiler, err := NewTiler(100, 20)
	require.NoError(t, err)

	tiles, err := tiler.Tiles(260, 100)
	require.NoError(t, err)

	// Starts at 0, 80, 160; the third tile covers 160..260.
	require.Len(t, tiles, 3)
	assert.Equal(t, []int{0, 80, 160}, []int{tiles[0].X, tiles[1].X, tiles[2].X})
	assert.Equal(t, 100, tiles[2].Width)
	assert.False(t, tiles[2].PadRight)
}

func TestTiles_Deterministic(t *testing.T) {
	tiler, err := NewTiler(128, 16)
	require.NoError(t, err)

	a, err := tiler.Tiles(1000, 700)
	require.NoError(t, err)
	b, err := tiler.Tiles(1000, 700)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestTiles_SmallImage(t *testing.T) {
	tiler, err := NewTiler(640, 0)
	require.NoError(t, err)

	tiles, err := tiler.Tiles(10, 10)
	require.NoError(t, err)
	require.Len(t, tiles, 1)
	assert.Equal(t, 10, tiles[0].Width)
	assert.True(t, tiles[0].PadRight)
	assert.True(t, tiles[0].PadBottom)
}

func TestTiles_InvalidImage(t *testing.T) {
	tiler, err := NewTiler(64, 0)
	require.NoError(t, err)

	_, err = tiler.Tiles(0, 100)
	assert.True(t, errors.IsInputError(err))
}

func TestTiles_Limits(t *testing.T) {
	tiler, err := NewTiler(640, 0)
	require.NoError(t, err)

	_, err = tiler.Tiles(1_000_000_000, 1_000_000_000)
	assert.True(t, errors.IsInputError(err))
	_, err = tiler.Tiles(MaxImageSide+1, 100)
	assert.True(t, errors.IsInputError(err))

	tiles, err := tiler.Tiles(MaxImageSide, MaxImageSide)
	require.NoError(t, err)
	assert.Len(t, tiles, 103*103)

	small, err := NewTiler(16, 0)
	require.NoError(t, err)
	_, err = small.Tiles(MaxImageSide, MaxImageSide)
	assert.True(t, errors.IsInputError(err), "4096x4096 grid is too many tiles")
}

func TestTile_ToGlobal(t *testing.T) {
	tile := Tile{X: 640, Y: 1280, Size: 640}

	assert.Equal(t, Box{650, 1290, 690, 1310}, tile.ToGlobal(Box{10, 10, 50, 30}))
	assert.Equal(t, image.Pt(641, 1282), tile.ToGlobalPoint(image.Pt(1, 2)))
}

func TestExtract_PadsEdgeTile(t *testing.T) {
	img := createGradientImage(150, 80)
	tiler, err := NewTiler(100, 0)
	require.NoError(t, err)
	tiles, err := tiler.Tiles(150, 80)
	require.NoError(t, err)

	raster := tiler.Extract(img, tiles[1])
	assert.Equal(t, 100, raster.Bounds().Dx())
	assert.Equal(t, 100, raster.Bounds().Dy())

	// Content pixel maps back to the source.
	assert.Equal(t, img.NRGBAAt(100, 0), raster.NRGBAAt(0, 0))
	assert.Equal(t, img.NRGBAAt(149, 79), raster.NRGBAAt(49, 79))
	// Padding.
	assert.Equal(t, PadColor, raster.NRGBAAt(50, 0))
	assert.Equal(t, PadColor, raster.NRGBAAt(0, 80))
}

func TestMerge_RoundTrip(t *testing.T) {
	sizes := []struct{ w, h, tile, overlap int }{
		{1280, 640, 640, 0},
		{250, 120, 100, 0},
		{257, 131, 64, 0},
		{300, 200, 64, 16},
		{33, 17, 64, 0},
	}

	for _, sz := range sizes {
		img := createGradientImage(sz.w, sz.h)
		tiler, err := NewTiler(sz.tile, sz.overlap)
		require.NoError(t, err)
		tiles, err := tiler.Tiles(sz.w, sz.h)
		require.NoError(t, err)

		rasters := make([]image.Image, len(tiles))
		for i, tile := range tiles {
			rasters[i] = tiler.Extract(img, tile)
		}

		merged, err := tiler.Merge(tiles, rasters, sz.w, sz.h)
		require.NoError(t, err)
		assert.Equal(t, img.Bounds(), merged.Bounds())
		assert.Equal(t, img.Pix, merged.Pix, "round trip %dx%d tile %d overlap %d", sz.w, sz.h, sz.tile, sz.overlap)
	}
}

func TestMerge_Errors(t *testing.T) {
	tiler, err := NewTiler(64, 0)
	require.NoError(t, err)
	tiles, err := tiler.Tiles(100, 100)
	require.NoError(t, err)

	_, err = tiler.Merge(tiles, make([]image.Image, 1), 100, 100)
	assert.True(t, errors.IsInputError(err), "raster count mismatch")

	_, err = tiler.Merge(tiles, make([]image.Image, len(tiles)), 100, 100)
	assert.True(t, errors.IsInputError(err), "nil raster")

	small := make([]image.Image, len(tiles))
	for i := range small {
		small[i] = image.NewNRGBA(image.Rect(0, 0, 8, 8))
	}
	_, err = tiler.Merge(tiles, small, 100, 100)
	assert.True(t, errors.IsInputError(err), "undersized raster")
}

func TestValidateGrid(t *testing.T) {
	tiler, err := NewTiler(64, 0)
	require.NoError(t, err)
	good, err := tiler.Tiles(100, 100)
	require.NoError(t, err)
	require.NoError(t, ValidateGrid(good, 100, 100, 64))

	tests := []struct {
		name   string
		mutate func([]Tile) []Tile
	}{
		{"empty", func([]Tile) []Tile { return nil }},
		{"ids out of order", func(ts []Tile) []Tile { ts[0], ts[1] = ts[1], ts[0]; return ts }},
		{"wrong size", func(ts []Tile) []Tile { ts[2].Size = 32; return ts }},
		{"origin outside", func(ts []Tile) []Tile { ts[3].X = 500; return ts }},
		{"bad content", func(ts []Tile) []Tile { ts[3].Width = 64; return ts }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles := append([]Tile(nil), good...)
			err := ValidateGrid(tt.mutate(tiles), 100, 100, 64)
			assert.True(t, errors.IsInputError(err))
		})
	}
}
