package cluster

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghjez/ba-backend/internal/detection"
	"github.com/ghjez/ba-backend/internal/imaging"
)

func element(id string, x, y, h int) detection.TextElement {
	return detection.TextElement{GlobalDetection: detection.GlobalDetection{
		GUID: id,
		Box:  imaging.Box{X1: x, Y1: y, X2: x + 40, Y2: y + h},
	}}
}

func TestDBSCAN_Basic(t *testing.T) {
	pts := []orb.Point{{0, 0}, {100, 100}, {0, 5}, {100, 104}, {500, 500}}
	labels, n := DBSCAN(pts, 10, 2)

	assert.Equal(t, 2, n)
	assert.Equal(t, []int{0, 1, 0, 1, Noise}, labels)
}

func TestDBSCAN_InclusiveRadius(t *testing.T) {
	labels, n := DBSCAN([]orb.Point{{0, 0}, {3, 4}}, 5, 2)
	assert.Equal(t, 1, n)
	assert.Equal(t, []int{0, 0}, labels)
}

func TestDBSCAN_BorderPoints(t *testing.T) {
	pts := []orb.Point{{0, 0}, {1, 0}, {2, 0}, {11, 0}, {12, 0}}
	labels, n := DBSCAN(pts, 1, 3)

	// Only point 1 is core; 0 and 2 are border points of its cluster and
	// the far pair is too sparse.
	assert.Equal(t, 1, n)
	assert.Equal(t, []int{0, 0, 0, Noise, Noise}, labels)
}

func TestDBSCAN_SharedBorderJoinsFirstCluster(t *testing.T) {
	// Point 3 is within reach of the cores 0 and 4 but is not core itself.
	pts := []orb.Point{{0, 0}, {-1, 0}, {-1, 1}, {2, 0}, {4, 0}, {5, 0}, {5, 1}}
	labels, n := DBSCAN(pts, 2, 4)

	assert.Equal(t, 2, n)
	assert.Equal(t, []int{0, 0, 0, 0, 1, 1, 1}, labels)
}

func TestDBSCAN_ZeroEps(t *testing.T) {
	labels, n := DBSCAN([]orb.Point{{1, 1}, {1, 1}, {2, 2}}, 0, 2)
	assert.Equal(t, 1, n)
	assert.Equal(t, []int{0, 0, Noise}, labels)
}

func TestDBSCAN_Empty(t *testing.T) {
	labels, n := DBSCAN(nil, 10, 2)
	assert.Empty(t, labels)
	assert.Zero(t, n)
}

func TestEpsilon(t *testing.T) {
	elems := []detection.TextElement{element("a", 0, 0, 10), element("b", 0, 0, 20)}
	assert.Equal(t, 30.0, Epsilon(elems, 2))
	assert.Zero(t, Epsilon(nil, 2))
}

func TestClusterer_TwoStampsAndNoise(t *testing.T) {
	elems := []detection.TextElement{
		element("s1-code", 100, 100, 20),
		element("s2-code", 900, 100, 20),
		element("s1-name", 100, 125, 20),
		element("s2-name", 900, 125, 20),
		element("s1-area", 100, 150, 20),
		element("lonely", 500, 800, 20),
	}

	clusters, stats := NewClusterer(2, 2).Cluster(elems)
	require.Len(t, clusters, 2)

	assert.Equal(t, Cluster{Label: 0, Members: []string{"s1-code", "s1-name", "s1-area"}}, clusters[0])
	assert.Equal(t, Cluster{Label: 1, Members: []string{"s2-code", "s2-name"}}, clusters[1])
	assert.Equal(t, Stats{Points: 6, Clusters: 2, Noise: 1, Epsilon: 40}, stats)
}

func TestClusterer_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var elems []detection.TextElement
	for i := 0; i < 200; i++ {
		elems = append(elems, element(fmt.Sprintf("e%03d", i), rng.Intn(2000), rng.Intn(2000), 10+rng.Intn(15)))
	}

	c := NewClusterer(2, 2)
	first, _ := c.Cluster(elems)
	for i := 0; i < 5; i++ {
		again, _ := c.Cluster(elems)
		assert.Equal(t, first, again)
	}

	seen := map[string]bool{}
	for _, cl := range first {
		assert.GreaterOrEqual(t, len(cl.Members), 1)
		for _, id := range cl.Members {
			assert.False(t, seen[id], "%s in two clusters", id)
			seen[id] = true
		}
	}
}

func TestClusterer_Empty(t *testing.T) {
	clusters, stats := NewClusterer(2, 2).Cluster(nil)
	assert.Empty(t, clusters)
	assert.Zero(t, stats.Points)
}
