// Package detection connects the external text detector to the pipeline and
// merges its per-tile output into one detection list per drawing.
//
// # Detector Contract
//
// A Detector receives one padded tile raster at a time and returns
// RawDetections in that tile's local pixel frame. The package ships two
// adapters: HTTPDetector for an inference service and LabelDirDetector for
// label files left behind by a separately run detector. Both accept the YOLO
// style normalized format
//
//	class_id x_center y_center width height confidence
//
// # Merging
//
// Merger drops detections below the confidence threshold (0.5 by default),
// translates each box by its tile origin, assigns every detection a fresh
// identifier and sorts the list top to bottom by the upper box edge. The
// sort is stable, so detections on the same row keep tile order.
//
// # Concurrency
//
// Detector calls for the tiles of one drawing are independent. DetectTiles
// can run them concurrently and re-associates each result with its tile
// before merging.
package detection
