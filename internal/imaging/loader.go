package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder, common for plan scans

	"github.com/ghjez/ba-backend/internal/errors"
)

// Load opens and decodes a drawing from disk.
//
// Supported formats are PNG, JPEG, GIF, TIFF and BMP. Any failure is
// reported as an InputError: an unreadable drawing aborts its run.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewInputError("load image", "failed to open image", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.NewInputError("load image", "failed to decode image", err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, errors.NewInputError("load image", fmt.Sprintf("image %s is empty", filepath.Base(path)), nil)
	}
	return img, nil
}

// ImageCache keeps decoded drawings in memory for a limited time.
//
// Drawings are large, so entries expire after the configured TTL instead of
// living for the whole process. ImageCache is safe for concurrent use.
//
//	cache := imaging.NewImageCache(10 * time.Minute)
//	img, err := cache.Load("/scans/EG.tif")
type ImageCache struct {
	c *cache.Cache
}

// NewImageCache creates a cache whose entries expire after ttl.
func NewImageCache(ttl time.Duration) *ImageCache {
	return &ImageCache{c: cache.New(ttl, 2*ttl)}
}

// Load returns the cached drawing for path, decoding it on a miss.
// The cache key is the cleaned path.
func (c *ImageCache) Load(path string) (image.Image, error) {
	key := filepath.Clean(path)
	if v, ok := c.c.Get(key); ok {
		return v.(image.Image), nil
	}

	img, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.c.SetDefault(key, img)
	return img, nil
}

// Evict removes a drawing from the cache.
func (c *ImageCache) Evict(path string) {
	c.c.Delete(filepath.Clean(path))
}

// Clear removes all drawings from the cache.
func (c *ImageCache) Clear() {
	c.c.Flush()
}

// Len returns the number of cached drawings, expired ones included until
// the janitor runs.
func (c *ImageCache) Len() int {
	return c.c.ItemCount()
}

// ImageInfo contains metadata about a drawing file.
type ImageInfo struct {
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Format        string `json:"format"`
	FileSizeBytes int64  `json:"file_size_bytes"`
}

// LoadImageInfo loads a drawing through the cache and describes it.
// The format is derived from the file extension.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	case ".tif", ".tiff":
		format = "tiff"
	case ".bmp":
		format = "bmp"
	}

	b := img.Bounds()
	return &ImageInfo{
		Width:         b.Dx(),
		Height:        b.Dy(),
		Format:        format,
		FileSizeBytes: stat.Size(),
	}, nil
}
