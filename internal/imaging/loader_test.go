package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"github.com/ghjez/ba-backend/internal/errors"
)

// createTestImage writes a solid-color PNG into a temp dir and returns its path.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := createInMemoryImage(width, height, c)

	path := filepath.Join(t.TempDir(), "plan.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestLoad(t *testing.T) {
	path := createTestImage(t, 120, 80, color.White)

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 80, img.Bounds().Dy())
}

func TestLoad_TIFF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.tif")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, tiff.Encode(f, createInMemoryImage(40, 30, color.Black), nil))
	require.NoError(t, f.Close())

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 30), img.Bounds())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.True(t, errors.IsInputError(err))

	garbage := filepath.Join(t.TempDir(), "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o600))
	_, err = Load(garbage)
	assert.True(t, errors.IsInputError(err))
}

func TestImageCache(t *testing.T) {
	path := createTestImage(t, 10, 10, color.White)
	cache := NewImageCache(time.Minute)

	first, err := cache.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	// Served from memory even after the file is gone.
	require.NoError(t, os.Remove(path))
	second, err := cache.Load(path)
	require.NoError(t, err)
	assert.Same(t, first, second)

	cache.Evict(path)
	_, err = cache.Load(path)
	assert.Error(t, err)

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
}

func TestImageCache_Concurrent(t *testing.T) {
	path := createTestImage(t, 10, 10, color.White)
	cache := NewImageCache(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Load(path)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, cache.Len())
}

func TestLoadImageInfo(t *testing.T) {
	path := createTestImage(t, 64, 32, color.White)
	cache := NewImageCache(time.Minute)

	info, err := LoadImageInfo(cache, path)
	require.NoError(t, err)
	assert.Equal(t, 64, info.Width)
	assert.Equal(t, 32, info.Height)
	assert.Equal(t, "png", info.Format)
	assert.Positive(t, info.FileSizeBytes)
}
