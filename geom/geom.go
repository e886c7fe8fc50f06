// Copyright (c) 2026 the fatplan authors
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package geom computes convex boundaries for planar point groups.
//
// Coordinates are planar meters (see package geoproj). The convex hull of a
// group is obtained by lifting the 2D point set to a 3D prism and running
// quickhull on it: the vertices of the prism's bottom face are exactly the
// hull vertices of the 2D set.
package geom

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/golang/geo/r3"
	quickhull "github.com/markus-wa/quickhull-go/v2"
	"github.com/paulmach/orb"
)

const (
	defaultEps = 1e-9

	// minPrismHeight keeps the lifted point cloud non-degenerate even for
	// groups spanning less than a meter.
	minPrismHeight = 1.0
)

// ErrInsufficientPoints is returned when a boundary is requested for an
// empty point set.
var ErrInsufficientPoints = errors.New("geom: boundary requested on empty point set")

// GeometryError reports a hull or offset computation that produced an
// unusable shape.
type GeometryError struct {
	Op     string
	Reason string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("geom: %s: %s", e.Op, e.Reason)
}

// HullKind discriminates the degenerate hull cases.
type HullKind int

const (
	// HullPoint is the hull of a single (possibly repeated) point.
	HullPoint HullKind = iota
	// HullSegment is the hull of two points or of a collinear set.
	HullSegment
	// HullPolygon is a proper convex polygon of at least three vertices.
	HullPolygon
)

// Hull is the minimal convex enclosure of a planar point set.
//
// Points holds one point for HullPoint, the two extreme endpoints for
// HullSegment, and the polygon vertices in counter-clockwise order
// (unclosed) for HullPolygon.
type Hull struct {
	Kind   HullKind
	Points []orb.Point
}

// ConvexHull computes the hull of pts, reducing coincident and collinear
// inputs to the point and segment kinds.
func ConvexHull(pts []orb.Point) (Hull, error) {
	if len(pts) == 0 {
		return Hull{}, ErrInsufficientPoints
	}

	unique := dedupe(pts)
	switch len(unique) {
	case 1:
		return Hull{Kind: HullPoint, Points: unique}, nil
	case 2:
		a, b := orderSegment(unique[0], unique[1])
		return Hull{Kind: HullSegment, Points: []orb.Point{a, b}}, nil
	}

	if a, b, ok := collinearExtremes(unique); ok {
		return Hull{Kind: HullSegment, Points: []orb.Point{a, b}}, nil
	}

	ring, err := prismHull(unique)
	if err != nil {
		return Hull{}, err
	}
	return Hull{Kind: HullPolygon, Points: ring}, nil
}

// prismHull lifts the 2D points onto two z-levels and extracts the bottom
// face of the resulting 3D convex hull.
func prismHull(pts []orb.Point) ([]orb.Point, error) {
	n := len(pts)
	bound := orb.MultiPoint(pts).Bound()
	height := math.Max(bound.Max[0]-bound.Min[0], bound.Max[1]-bound.Min[1])
	height = math.Max(height, minPrismHeight)

	cloud := make([]r3.Vector, 2*n)
	for i, p := range pts {
		cloud[i] = r3.Vector{X: p[0], Y: p[1], Z: 0}
		cloud[n+i] = r3.Vector{X: p[0], Y: p[1], Z: height}
	}

	qh := new(quickhull.QuickHull)
	ch := qh.ConvexHull(cloud, true, true, defaultEps)
	if len(ch.Indices) == 0 {
		return nil, &GeometryError{Op: "hull", Reason: "quickhull returned no faces"}
	}

	onHull := make(map[int]bool)
	for _, idx := range ch.Indices {
		if idx < n {
			onHull[idx] = true
		}
	}
	if len(onHull) < 3 {
		return nil, &GeometryError{
			Op:     "hull",
			Reason: fmt.Sprintf("bottom face has %d vertices, want >= 3", len(onHull)),
		}
	}

	ring := make([]orb.Point, 0, len(onHull))
	for idx := range onHull {
		ring = append(ring, pts[idx])
	}
	sortCCW(ring)
	return ring, nil
}

// sortCCW orders the vertices of a convex ring counter-clockwise around
// their centroid. Ties on angle (collinear hull edge points) are broken by
// distance from the centroid so the ring stays simple.
func sortCCW(ring []orb.Point) {
	var cx, cy float64
	for _, p := range ring {
		cx += p[0]
		cy += p[1]
	}
	cx /= float64(len(ring))
	cy /= float64(len(ring))

	sort.Slice(ring, func(i, j int) bool {
		ai := math.Atan2(ring[i][1]-cy, ring[i][0]-cx)
		aj := math.Atan2(ring[j][1]-cy, ring[j][0]-cx)
		if ai != aj {
			return ai < aj
		}
		di := math.Hypot(ring[i][0]-cx, ring[i][1]-cy)
		dj := math.Hypot(ring[j][0]-cx, ring[j][1]-cy)
		return di < dj
	})
}

// dedupe drops exact duplicates, preserving first-occurrence order.
func dedupe(pts []orb.Point) []orb.Point {
	seen := make(map[orb.Point]bool, len(pts))
	out := make([]orb.Point, 0, len(pts))
	for _, p := range pts {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// collinearExtremes reports whether all points lie on one line. If so it
// returns the two extreme points along that line.
func collinearExtremes(pts []orb.Point) (orb.Point, orb.Point, bool) {
	a, b := pts[0], pts[1]
	dx, dy := b[0]-a[0], b[1]-a[1]
	scale := math.Hypot(dx, dy)

	for _, p := range pts[2:] {
		cross := dx*(p[1]-a[1]) - dy*(p[0]-a[0])
		if math.Abs(cross) > defaultEps*math.Max(scale, 1) {
			return orb.Point{}, orb.Point{}, false
		}
	}

	lo, hi := pts[0], pts[0]
	loT, hiT := 0.0, 0.0
	for _, p := range pts {
		t := dx*(p[0]-a[0]) + dy*(p[1]-a[1])
		if t < loT {
			lo, loT = p, t
		}
		if t > hiT {
			hi, hiT = p, t
		}
	}
	lo, hi = orderSegment(lo, hi)
	return lo, hi, true
}

// orderSegment puts the two endpoints in ascending (x, y) order so that
// degenerate hulls come out the same regardless of input order.
func orderSegment(a, b orb.Point) (orb.Point, orb.Point) {
	if b[0] < a[0] || (b[0] == a[0] && b[1] < a[1]) {
		return b, a
	}
	return a, b
}
