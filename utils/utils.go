// Copyright (c) 2026 the fatplan authors
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package utils provides deterministic homepass generation for tests,
// benchmarks and examples.
package utils

import (
	"math"
	"math/rand"

	"github.com/paulmach/orb"
)

const earthRadiusMeters = 6371008.8

// GeneratePoints returns cnt geographic points uniformly spread over a
// square of spreadMeters edge length centered on center. The seed parameter
// ensures reproducibility.
func GeneratePoints(cnt int, seed int64, center orb.Point, spreadMeters float64) []orb.Point {
	//nolint:gosec
	random := rand.New(rand.NewSource(seed))
	pts := make([]orb.Point, cnt)

	const deg = 180 / math.Pi
	latSpread := spreadMeters / earthRadiusMeters * deg
	lonSpread := latSpread / math.Cos(center[1]*math.Pi/180)

	for i := 0; i < cnt; i++ {
		pts[i] = orb.Point{
			center[0] + (random.Float64()-0.5)*lonSpread,
			center[1] + (random.Float64()-0.5)*latSpread,
		}
	}
	return pts
}

// GenerateClusters produces perCluster points around each center, each
// cluster confined to a square of spreadMeters edge length. Points of
// cluster i occupy indices [i*perCluster, (i+1)*perCluster).
func GenerateClusters(centers []orb.Point, perCluster int, seed int64, spreadMeters float64) []orb.Point {
	var pts []orb.Point
	for i, c := range centers {
		pts = append(pts, GeneratePoints(perCluster, seed+int64(i), c, spreadMeters)...)
	}
	return pts
}
