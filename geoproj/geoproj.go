// Copyright (c) 2026 the fatplan authors
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package geoproj converts between geographic (lon/lat degrees, WGS84) and
// local planar coordinates in which Euclidean distance approximates meters.
//
// Points follow the orb convention: index 0 is longitude/x, index 1 is
// latitude/y.
package geoproj

import (
	"fmt"
	"math"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// earthRadiusMeters is the IUGG mean Earth radius.
const earthRadiusMeters = 6371008.8

// maxLocalLat bounds the reference latitude of the local projections; the
// meter-per-degree-longitude factor collapses toward the poles.
const maxLocalLat = 85.0

// Error reports a coordinate that cannot be projected.
type Error struct {
	Point  orb.Point
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("geoproj: cannot project (%v, %v): %s", e.Point[0], e.Point[1], e.Reason)
}

// Projection maps geographic points to planar meters and back. Forward and
// Inverse must preserve identity and order and be mutual inverses up to
// floating point error.
type Projection interface {
	Forward(geo orb.Point) (orb.Point, error)
	Inverse(planar orb.Point) (orb.Point, error)
}

// Local is an equirectangular tangent-plane projection centered on an
// origin point. Distances near the origin approximate ground meters; the
// inverse is exact.
type Local struct {
	origin orb.Point
	cosLat float64
}

// NewLocal builds a Local projection at origin, usually the dataset
// centroid.
func NewLocal(origin orb.Point) (*Local, error) {
	if err := checkGeo(origin); err != nil {
		return nil, err
	}
	if math.Abs(origin[1]) > maxLocalLat {
		return nil, &Error{Point: origin, Reason: "origin latitude outside projection domain"}
	}
	return &Local{
		origin: origin,
		cosLat: math.Cos(origin[1] * math.Pi / 180),
	}, nil
}

func (l *Local) Forward(geo orb.Point) (orb.Point, error) {
	if err := checkGeo(geo); err != nil {
		return orb.Point{}, err
	}
	const rad = math.Pi / 180
	return orb.Point{
		(geo[0] - l.origin[0]) * rad * earthRadiusMeters * l.cosLat,
		(geo[1] - l.origin[1]) * rad * earthRadiusMeters,
	}, nil
}

func (l *Local) Inverse(planar orb.Point) (orb.Point, error) {
	if err := checkFinite(planar); err != nil {
		return orb.Point{}, err
	}
	const deg = 180 / math.Pi
	return orb.Point{
		l.origin[0] + planar[0]*deg/(earthRadiusMeters*l.cosLat),
		l.origin[1] + planar[1]*deg/earthRadiusMeters,
	}, nil
}

// Mercator wraps orb's Web-Mercator projection, recentered on an origin and
// scaled by cos(origin latitude) so distances near the origin approximate
// meters.
type Mercator struct {
	origin orb.Point
	m0     orb.Point
	scale  float64
}

func NewMercator(origin orb.Point) (*Mercator, error) {
	if err := checkGeo(origin); err != nil {
		return nil, err
	}
	if math.Abs(origin[1]) > maxLocalLat {
		return nil, &Error{Point: origin, Reason: "origin latitude outside projection domain"}
	}
	return &Mercator{
		origin: origin,
		m0:     project.WGS84.ToMercator(origin),
		scale:  math.Cos(origin[1] * math.Pi / 180),
	}, nil
}

func (m *Mercator) Forward(geo orb.Point) (orb.Point, error) {
	if err := checkGeo(geo); err != nil {
		return orb.Point{}, err
	}
	if math.Abs(geo[1]) > maxLocalLat {
		return orb.Point{}, &Error{Point: geo, Reason: "latitude outside mercator domain"}
	}
	p := project.WGS84.ToMercator(geo)
	return orb.Point{(p[0] - m.m0[0]) * m.scale, (p[1] - m.m0[1]) * m.scale}, nil
}

func (m *Mercator) Inverse(planar orb.Point) (orb.Point, error) {
	if err := checkFinite(planar); err != nil {
		return orb.Point{}, err
	}
	p := orb.Point{planar[0]/m.scale + m.m0[0], planar[1]/m.scale + m.m0[1]}
	return project.Mercator.ToWGS84(p), nil
}

// ForwardAll projects a slice of points, preserving order.
func ForwardAll(p Projection, geo []orb.Point) ([]orb.Point, error) {
	out := make([]orb.Point, len(geo))
	for i, g := range geo {
		pt, err := p.Forward(g)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		out[i] = pt
	}
	return out, nil
}

// InverseAll unprojects a slice of points, preserving order.
func InverseAll(p Projection, planar []orb.Point) ([]orb.Point, error) {
	out := make([]orb.Point, len(planar))
	for i, pl := range planar {
		pt, err := p.Inverse(pl)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		out[i] = pt
	}
	return out, nil
}

// Centroid is the arithmetic mean of the points, used as the default
// projection origin. Panics-free: an empty slice returns the zero point.
func Centroid(pts []orb.Point) orb.Point {
	if len(pts) == 0 {
		return orb.Point{}
	}
	var c orb.Point
	for _, p := range pts {
		c[0] += p[0]
		c[1] += p[1]
	}
	c[0] /= float64(len(pts))
	c[1] /= float64(len(pts))
	return c
}

func checkFinite(p orb.Point) error {
	if math.IsNaN(p[0]) || math.IsInf(p[0], 0) || math.IsNaN(p[1]) || math.IsInf(p[1], 0) {
		return &Error{Point: p, Reason: "non-finite coordinate"}
	}
	return nil
}

func checkGeo(p orb.Point) error {
	if err := checkFinite(p); err != nil {
		return err
	}
	if !s2.LatLngFromDegrees(p[1], p[0]).IsValid() {
		return &Error{Point: p, Reason: "coordinate outside lat/lon domain"}
	}
	return nil
}
