// Package imaging provides the raster side of room stamp extraction.
//
// Scanned architectural drawings are far larger than the fixed input size of
// the text detector. This package splits a drawing into fixed-size tiles,
// maps tile-local coordinates back into drawing coordinates, reassembles
// tiles into a full image, and cuts text snippets out of the drawing for the
// recognizer.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. A Box is (x1,y1) top-left
// inclusive and (x2,y2) bottom-right exclusive.
//
// # Tiling Policy
//
// Tiles are square with edge length Size and start every Size-Overlap
// pixels, row-major. Tiles at the right and bottom border are padded with
// PadColor up to the full size rather than clipped, so the detector always
// sees Size x Size input. Padding is dropped again by Merge, which makes
// Extract followed by Merge an exact round trip.
//
// Tiling is deterministic: the tile list depends only on the image size and
// the tiler parameters.
//
// # Thread Safety
//
// Tiler values are immutable after construction and may be shared. The
// ImageCache is safe for concurrent use.
package imaging
