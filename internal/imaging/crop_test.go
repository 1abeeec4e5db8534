package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCropSnippet(t *testing.T) {
	img := createGradientImage(100, 100)

	snippet, err := CropSnippet(img, Box{10, 20, 50, 30})
	require.NoError(t, err)
	assert.Equal(t, 40, snippet.Bounds().Dx())
	assert.Equal(t, 10, snippet.Bounds().Dy())
	assert.Equal(t, img.NRGBAAt(10, 20), snippet.NRGBAAt(0, 0))
}

func TestCropSnippet_ClipsToImage(t *testing.T) {
	img := createGradientImage(100, 100)

	// Box reaching into edge tile padding.
	snippet, err := CropSnippet(img, Box{80, 90, 130, 120})
	require.NoError(t, err)
	assert.Equal(t, 20, snippet.Bounds().Dx())
	assert.Equal(t, 10, snippet.Bounds().Dy())
}

func TestCropSnippet_OutsideImage(t *testing.T) {
	img := createInMemoryImage(100, 100, color.White)

	tests := []struct {
		name string
		box  Box
	}{
		{"right of image", Box{120, 0, 150, 20}},
		{"below image", Box{0, 100, 20, 120}},
		{"zero area", Box{10, 10, 10, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CropSnippet(img, tt.box)
			assert.Error(t, err)
		})
	}
}

func TestCropSnippet_OffsetBounds(t *testing.T) {
	src := createGradientImage(100, 100)
	sub := src.SubImage(image.Rect(50, 50, 100, 100))

	snippet, err := CropSnippet(sub, Box{0, 0, 10, 10})
	require.NoError(t, err)
	assert.Equal(t, src.NRGBAAt(50, 50), snippet.NRGBAAt(0, 0))
}

func TestScaleSnippet(t *testing.T) {
	small := createInMemoryImage(40, 8, color.Black)

	scaled := ScaleSnippet(small, 32)
	assert.Equal(t, 32, scaled.Bounds().Dy())
	assert.Equal(t, 160, scaled.Bounds().Dx())

	assert.Same(t, small, ScaleSnippet(small, 8), "tall enough snippets are returned as is")
	assert.Same(t, small, ScaleSnippet(small, 0))
}

func TestBox(t *testing.T) {
	b := Box{10, 10, 50, 30}

	assert.Equal(t, 40, b.Width())
	assert.Equal(t, 20, b.Height())
	assert.Equal(t, 800, b.Area())
	assert.Equal(t, Box{650, 10, 690, 30}, b.Translate(640, 0))
	assert.Equal(t, 20, Box{0, 30, 10, 10}.Height(), "height is absolute")
	assert.Equal(t, 0, Box{5, 5, 1, 1}.Area())

	assert.InDelta(t, 1.0, b.IoU(b), 1e-9)
	assert.InDelta(t, 0.0, b.IoU(Box{100, 100, 110, 110}), 1e-9)
	assert.InDelta(t, 1.0/3.0, Box{0, 0, 10, 10}.IoU(Box{5, 0, 15, 10}), 1e-9)
}

func TestBox_JSON(t *testing.T) {
	data, err := Box{1, 2, 3, 4}.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2,3,4]`, string(data))

	var b Box
	require.NoError(t, b.UnmarshalJSON([]byte(`[650,10,690,30]`)))
	assert.Equal(t, Box{650, 10, 690, 30}, b)

	assert.Error(t, b.UnmarshalJSON([]byte(`[1,2,3]`)))
	assert.Error(t, b.UnmarshalJSON([]byte(`{"x1":1}`)))
}
