// Package cluster groups text elements that belong to the same room stamp.
//
// Stamps are compact blocks of a few text lines, so elements whose top-left
// corners lie within a couple of line heights of each other are grouped by
// density-based clustering (DBSCAN). Isolated elements are noise and are
// dropped.
package cluster

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Noise is the label of points that belong to no cluster.
const Noise = -1

// DBSCAN labels points by density-based clustering.
//
// The neighborhood of a point contains every point at Euclidean distance
// <= eps, the point itself included. A point is a core point when its
// neighborhood has at least minSamples members. Labels are 0..n-1 in the
// order of the lowest-index core point of each cluster; border points
// reachable from more than one cluster join the one labeled first.
// The result matches scikit-learn's DBSCAN for the same input.
func DBSCAN(points []orb.Point, eps float64, minSamples int) (labels []int, clusters int) {
	n := len(points)
	labels = make([]int, n)
	if n == 0 {
		return labels, 0
	}

	neighbors := make([][]int, n)
	core := make([]bool, n)
	for i := range points {
		for j := range points {
			if planar.Distance(points[i], points[j]) <= eps {
				neighbors[i] = append(neighbors[i], j)
			}
		}
		core[i] = len(neighbors[i]) >= minSamples
		labels[i] = Noise
	}

	var stack []int
	for seed := range points {
		if labels[seed] != Noise || !core[seed] {
			continue
		}
		i := seed
		for {
			if labels[i] == Noise {
				labels[i] = clusters
				if core[i] {
					for _, v := range neighbors[i] {
						if labels[v] == Noise {
							stack = append(stack, v)
						}
					}
				}
			}
			if len(stack) == 0 {
				break
			}
			i = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		}
		clusters++
	}
	return labels, clusters
}
