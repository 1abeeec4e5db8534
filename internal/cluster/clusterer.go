package cluster

import (
	"github.com/paulmach/orb"

	"github.com/ghjez/ba-backend/internal/detection"
	"github.com/ghjez/ba-backend/internal/logger"
)

// Cluster is one group of element ids, in ascending input order.
type Cluster struct {
	Label   int
	Members []string
}

// Stats describes one clustering run.
type Stats struct {
	Points   int
	Clusters int
	Noise    int
	Epsilon  float64
}

// Clusterer groups text elements by the position of their top-left corner.
type Clusterer struct {
	// HeightFactor scales the mean element height into the neighborhood
	// radius.
	HeightFactor float64
	// MinSamples is the neighborhood size that makes a core point.
	MinSamples int
}

// NewClusterer returns a Clusterer with the given parameters.
func NewClusterer(heightFactor float64, minSamples int) *Clusterer {
	return &Clusterer{HeightFactor: heightFactor, MinSamples: minSamples}
}

// Epsilon returns mean(|y2 - y1|) * factor over elements, or 0 without
// elements.
func Epsilon(elems []detection.TextElement, factor float64) float64 {
	if len(elems) == 0 {
		return 0
	}
	sum := 0
	for _, e := range elems {
		sum += e.Box.Height()
	}
	return float64(sum) / float64(len(elems)) * factor
}

// Anchors returns the top-left corner of every element.
func Anchors(elems []detection.TextElement) []orb.Point {
	pts := make([]orb.Point, len(elems))
	for i, e := range elems {
		pts[i] = orb.Point{float64(e.Box.X1), float64(e.Box.Y1)}
	}
	return pts
}

// Cluster groups elems. Noise elements appear in no cluster. The result is
// deterministic for a given input order.
func (c *Clusterer) Cluster(elems []detection.TextElement) ([]Cluster, Stats) {
	eps := Epsilon(elems, c.HeightFactor)
	labels, n := DBSCAN(Anchors(elems), eps, c.MinSamples)

	clusters := make([]Cluster, n)
	for i := range clusters {
		clusters[i].Label = i
	}
	stats := Stats{Points: len(elems), Clusters: n, Epsilon: eps}
	for i, l := range labels {
		if l == Noise {
			stats.Noise++
			continue
		}
		clusters[l].Members = append(clusters[l].Members, elems[i].GUID)
	}

	logger.Module("cluster").Debug("clustered elements",
		"points", stats.Points,
		"clusters", stats.Clusters,
		"noise", stats.Noise,
		"eps", eps)
	return clusters, stats
}
