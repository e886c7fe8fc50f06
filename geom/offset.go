// Copyright (c) 2026 the fatplan authors
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package geom

import (
	"log/slog"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// defaultArcStep subdivides offset arcs roughly every 11 degrees.
const defaultArcStep = math.Pi / 16

// Builder turns a group's point set into a renderable boundary shape.
//
// With Margin > 0 the convex hull is grown outward by Margin using a
// rounded Minkowski-style offset; degenerate hulls become circles and
// capsules. With Margin == 0 degenerate hulls stay point and line markers
// and the caller is expected to render them as such.
type Builder struct {
	// Margin is the outward offset distance in meters. Must be >= 0.
	Margin float64

	// ArcStep is the maximum angle in radians between consecutive arc
	// vertices. Zero means defaultArcStep.
	ArcStep float64

	// Log receives non-fatal anomaly reports. Nil disables them.
	Log *slog.Logger
}

// Boundary computes the boundary shape of pts.
//
// The result is an orb.Polygon, or for degenerate groups with zero margin
// an orb.LineString or orb.Point.
func (b *Builder) Boundary(pts []orb.Point) (orb.Geometry, error) {
	if b.Margin < 0 {
		return nil, &GeometryError{Op: "offset", Reason: "negative margin"}
	}

	hull, err := ConvexHull(pts)
	if err != nil {
		return nil, err
	}

	if b.Margin == 0 {
		switch hull.Kind {
		case HullPoint:
			return hull.Points[0], nil
		case HullSegment:
			return orb.LineString(hull.Points), nil
		default:
			return orb.Polygon{closeRing(hull.Points)}, nil
		}
	}

	var pieces []orb.Ring
	switch hull.Kind {
	case HullPoint:
		pieces = []orb.Ring{circleRing(hull.Points[0], b.Margin, b.arcStep())}
	case HullSegment:
		pieces = []orb.Ring{capsuleRing(hull.Points[0], hull.Points[1], b.Margin, b.arcStep())}
	default:
		pieces = offsetRings(hull.Points, b.Margin, b.arcStep())
	}
	ring, err := b.largestPiece(pieces)
	if err != nil {
		return nil, err
	}
	return orb.Polygon{ring}, nil
}

func (b *Builder) arcStep() float64 {
	if b.ArcStep > 0 {
		return b.ArcStep
	}
	return defaultArcStep
}

// largestPiece selects the ring with the greatest area. A convex hull with
// a positive offset yields a single piece; anything extra is discarded and
// reported.
func (b *Builder) largestPiece(pieces []orb.Ring) (orb.Ring, error) {
	if len(pieces) == 0 {
		return nil, &GeometryError{Op: "offset", Reason: "offset produced no ring"}
	}
	best, bestArea := -1, 0.0
	for i, r := range pieces {
		if len(r) < 4 {
			continue
		}
		if area := math.Abs(planar.Area(r)); best < 0 || area > bestArea {
			best, bestArea = i, area
		}
	}
	if best < 0 {
		return nil, &GeometryError{Op: "offset", Reason: "all offset rings degenerate"}
	}
	if len(pieces) > 1 && b.Log != nil {
		b.Log.Warn("offset produced disjoint pieces, keeping largest",
			"pieces", len(pieces), "kept_area", bestArea)
	}
	return pieces[best], nil
}

// offsetRings grows a convex CCW ring outward by dist: every edge is
// translated along its outward normal and the gaps at the vertices are
// filled with arcs.
func offsetRings(ring []orb.Point, dist, step float64) []orb.Ring {
	n := len(ring)
	out := make(orb.Ring, 0, n*4)

	for i := 0; i < n; i++ {
		p := ring[i]
		prev := ring[(i-1+n)%n]
		next := ring[(i+1)%n]

		n1 := outwardNormal(prev, p)
		n2 := outwardNormal(p, next)

		a1 := math.Atan2(n1[1], n1[0])
		a2 := math.Atan2(n2[1], n2[0])
		for a2 < a1 {
			a2 += 2 * math.Pi
		}
		out = append(out, arc(p, dist, a1, a2, step)...)
	}

	out = cleanRing(out)
	if len(out) < 3 {
		return nil
	}
	return []orb.Ring{closeRing(out)}
}

// circleRing approximates a circle of radius dist around c.
func circleRing(c orb.Point, dist, step float64) orb.Ring {
	ring := cleanRing(orb.Ring(arc(c, dist, 0, 2*math.Pi, step)))
	return closeRing(ring)
}

// capsuleRing buffers the segment (p, q) into a stadium shape.
func capsuleRing(p, q orb.Point, dist, step float64) orb.Ring {
	dir := math.Atan2(q[1]-p[1], q[0]-p[0])

	ring := make(orb.Ring, 0, 2*int(math.Pi/step)+4)
	ring = append(ring, arc(q, dist, dir-math.Pi/2, dir+math.Pi/2, step)...)
	ring = append(ring, arc(p, dist, dir+math.Pi/2, dir+3*math.Pi/2, step)...)
	return closeRing(cleanRing(ring))
}

// arc samples points on the circle around c from angle a1 to a2 (a2 >= a1),
// including both endpoints.
func arc(c orb.Point, dist, a1, a2, step float64) []orb.Point {
	segments := int(math.Ceil((a2 - a1) / step))
	if segments < 1 {
		segments = 1
	}
	pts := make([]orb.Point, 0, segments+1)
	for i := 0; i <= segments; i++ {
		a := a1 + (a2-a1)*float64(i)/float64(segments)
		pts = append(pts, orb.Point{c[0] + dist*math.Cos(a), c[1] + dist*math.Sin(a)})
	}
	return pts
}

// outwardNormal is the unit normal of edge (p, q) pointing out of a CCW ring.
func outwardNormal(p, q orb.Point) orb.Point {
	dx, dy := q[0]-p[0], q[1]-p[1]
	length := math.Hypot(dx, dy)
	if length == 0 {
		return orb.Point{0, 0}
	}
	return orb.Point{dy / length, -dx / length}
}

// cleanRing removes consecutive near-duplicate vertices.
func cleanRing(ring orb.Ring) orb.Ring {
	out := ring[:0]
	for _, p := range ring {
		if len(out) > 0 {
			last := out[len(out)-1]
			if math.Hypot(p[0]-last[0], p[1]-last[1]) < defaultEps {
				continue
			}
		}
		out = append(out, p)
	}
	if len(out) > 1 {
		first, last := out[0], out[len(out)-1]
		if math.Hypot(first[0]-last[0], first[1]-last[1]) < defaultEps {
			out = out[:len(out)-1]
		}
	}
	return out
}

// closeRing appends the first vertex so the ring satisfies orb's closed
// ring convention.
func closeRing(pts []orb.Point) orb.Ring {
	ring := make(orb.Ring, 0, len(pts)+1)
	ring = append(ring, pts...)
	if len(ring) > 0 && !ring[0].Equal(ring[len(ring)-1]) {
		ring = append(ring, ring[0])
	}
	return ring
}
