package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// CropSnippet cuts the region of box out of img for text recognition.
//
// Detector boxes may reach into the padding of an edge tile, so the box is
// clipped to the image first. A box that does not overlap the image at all
// is an error.
func CropSnippet(img image.Image, box Box) (*image.NRGBA, error) {
	bounds := img.Bounds()
	r := box.Rect().Add(bounds.Min).Intersect(bounds)
	if r.Empty() {
		return nil, fmt.Errorf("snippet %s outside image bounds (%d,%d)-(%d,%d)",
			box, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	return imaging.Crop(img, r), nil
}

// ScaleSnippet resizes a snippet so its height is at least minHeight pixels,
// keeping the aspect ratio. Recognizers do poorly on tiny glyphs.
func ScaleSnippet(img image.Image, minHeight int) image.Image {
	h := img.Bounds().Dy()
	if minHeight <= 0 || h == 0 || h >= minHeight {
		return img
	}
	return imaging.Resize(img, 0, minHeight, imaging.Lanczos)
}
