// Copyright (c) 2026 the fatplan authors
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package geoproj

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb"
)

// Jakarta-ish survey origin used across the tests.
var origin = orb.Point{106.8, -6.2}

func projections(t *testing.T) map[string]Projection {
	t.Helper()
	local, err := NewLocal(origin)
	if err != nil {
		t.Fatalf("NewLocal(%v) error = %v, want nil", origin, err)
	}
	merc, err := NewMercator(origin)
	if err != nil {
		t.Fatalf("NewMercator(%v) error = %v, want nil", origin, err)
	}
	return map[string]Projection{"local": local, "mercator": merc}
}

func TestProjection_Roundtrip(t *testing.T) {
	pts := []orb.Point{
		origin,
		{106.81, -6.19},
		{106.79, -6.21},
		{106.8005, -6.2001},
	}

	for name, proj := range projections(t) {
		t.Run(name, func(t *testing.T) {
			for _, p := range pts {
				planar, err := proj.Forward(p)
				if err != nil {
					t.Fatalf("Forward(%v) error = %v, want nil", p, err)
				}
				back, err := proj.Inverse(planar)
				if err != nil {
					t.Fatalf("Inverse(%v) error = %v, want nil", planar, err)
				}
				if math.Abs(back[0]-p[0]) > 1e-6 || math.Abs(back[1]-p[1]) > 1e-6 {
					t.Errorf("Inverse(Forward(%v)) = %v, want within 1e-6 degrees", p, back)
				}
			}
		})
	}
}

func TestProjection_OriginMapsToZero(t *testing.T) {
	for name, proj := range projections(t) {
		t.Run(name, func(t *testing.T) {
			planar, err := proj.Forward(origin)
			if err != nil {
				t.Fatalf("Forward(origin) error = %v, want nil", err)
			}
			if math.Abs(planar[0]) > 1e-9 || math.Abs(planar[1]) > 1e-9 {
				t.Errorf("Forward(origin) = %v, want (0, 0)", planar)
			}
		})
	}
}

func TestProjection_DistancesApproximateMeters(t *testing.T) {
	// 0.001 degrees of latitude is about 111.2 m on the ground.
	p1, p2 := origin, orb.Point{origin[0], origin[1] + 0.001}
	const wantMeters = 111.195

	for name, proj := range projections(t) {
		t.Run(name, func(t *testing.T) {
			a, err := proj.Forward(p1)
			if err != nil {
				t.Fatalf("Forward(%v) error = %v, want nil", p1, err)
			}
			b, err := proj.Forward(p2)
			if err != nil {
				t.Fatalf("Forward(%v) error = %v, want nil", p2, err)
			}
			got := math.Hypot(b[0]-a[0], b[1]-a[1])
			if math.Abs(got-wantMeters)/wantMeters > 0.01 {
				t.Errorf("planar distance = %v m, want %v m within 1%%", got, wantMeters)
			}
		})
	}
}

func TestProjection_RejectsBadCoordinates(t *testing.T) {
	tests := []struct {
		name string
		pt   orb.Point
	}{
		{"NaN longitude", orb.Point{math.NaN(), 0}},
		{"infinite latitude", orb.Point{0, math.Inf(1)}},
		{"latitude out of domain", orb.Point{106.8, 95}},
		{"longitude out of domain", orb.Point{200, -6.2}},
	}
	for name, proj := range projections(t) {
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				_, err := proj.Forward(tt.pt)
				var perr *Error
				if !errors.As(err, &perr) {
					t.Errorf("Forward(%v) error = %v, want *geoproj.Error", tt.pt, err)
				}
			})
		}
	}
}

func TestNewLocal_RejectsPolarOrigin(t *testing.T) {
	if _, err := NewLocal(orb.Point{0, 89}); err == nil {
		t.Errorf("NewLocal(polar) error = nil, want non-nil")
	}
}

func TestForwardAll_PreservesOrder(t *testing.T) {
	local, err := NewLocal(origin)
	if err != nil {
		t.Fatalf("NewLocal(%v) error = %v, want nil", origin, err)
	}
	pts := []orb.Point{{106.81, -6.19}, {106.79, -6.21}, origin}

	planar, err := ForwardAll(local, pts)
	if err != nil {
		t.Fatalf("ForwardAll(...) error = %v, want nil", err)
	}
	if len(planar) != len(pts) {
		t.Fatalf("ForwardAll(...) len = %d, want %d", len(planar), len(pts))
	}
	back, err := InverseAll(local, planar)
	if err != nil {
		t.Fatalf("InverseAll(...) error = %v, want nil", err)
	}
	opt := cmp.Comparer(func(a, b orb.Point) bool {
		return math.Abs(a[0]-b[0]) < 1e-9 && math.Abs(a[1]-b[1]) < 1e-9
	})
	if diff := cmp.Diff(pts, back, opt); diff != "" {
		t.Errorf("InverseAll(ForwardAll(...)) mismatch (-want +got):\n%v", diff)
	}
}

func TestForwardAll_ReportsOffendingPoint(t *testing.T) {
	local, err := NewLocal(origin)
	if err != nil {
		t.Fatalf("NewLocal(%v) error = %v, want nil", origin, err)
	}
	pts := []orb.Point{origin, {math.NaN(), 0}}
	if _, err := ForwardAll(local, pts); err == nil {
		t.Errorf("ForwardAll(...) error = nil, want non-nil")
	}
}

func TestCentroid(t *testing.T) {
	tests := []struct {
		name string
		pts  []orb.Point
		want orb.Point
	}{
		{"empty", nil, orb.Point{}},
		{"single", []orb.Point{{2, 4}}, orb.Point{2, 4}},
		{"square", []orb.Point{{0, 0}, {2, 0}, {2, 2}, {0, 2}}, orb.Point{1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Centroid(tt.pts); !got.Equal(tt.want) {
				t.Errorf("Centroid(%v) = %v, want %v", tt.pts, got, tt.want)
			}
		})
	}
}
