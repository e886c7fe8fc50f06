// Copyright (c) 2026 the fatplan authors
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package partition splits clustered homepass points into capacity-bounded
// groups.
//
// Two strategies are provided. Proximity clusters points by eps
// connectivity and slices over-capacity clusters into position-sorted
// chunks. Grid overlays a fixed square grid and greedily merges adjacent
// cells (see grid.go). Both satisfy the same contract: every input point
// ends up in exactly one group and no group exceeds the capacity.
package partition

import (
	"errors"
	"fmt"
	"sort"

	"github.com/paulmach/orb"

	"fatplan/cluster"
)

// ErrEmptyCluster is returned when a chunking pass receives zero points.
var ErrEmptyCluster = errors.New("partition: cannot chunk an empty cluster")

// ErrNoPoints is returned when a strategy is invoked on an empty point set.
var ErrNoPoints = errors.New("partition: no points to partition")

// Group is one capacity-bounded set of points produced by a Strategy.
type Group struct {
	// Members are indices into the point slice given to Partition.
	Members []int

	// HullPoints are the planar points the group boundary should enclose.
	// For the proximity strategy these are the member points themselves;
	// the grid strategy uses the corners of the consumed cells instead.
	HullPoints []orb.Point
}

// Strategy partitions a planar point set into groups of at most the
// configured capacity. Implementations must be deterministic for a fixed
// input order.
type Strategy interface {
	Name() string
	Partition(points []orb.Point) ([]Group, error)
}

// Proximity implements the cluster-then-chunk strategy: eps-connectivity
// clustering followed by x-sorted slicing of over-capacity clusters.
type Proximity struct {
	// Eps is the maximum neighbor distance in meters.
	Eps float64

	// Capacity is the maximum group size.
	Capacity int
}

func (s Proximity) Name() string { return "proximity" }

func (s Proximity) Partition(points []orb.Point) ([]Group, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	if s.Capacity < 1 {
		return nil, fmt.Errorf("partition: capacity %d, want >= 1", s.Capacity)
	}

	labels, err := cluster.Labels(points, s.Eps)
	if err != nil {
		return nil, err
	}

	var out []Group
	for _, members := range cluster.Groups(labels) {
		chunks, err := Chunk(points, members, s.Capacity)
		if err != nil {
			return nil, err
		}
		for _, chunk := range chunks {
			out = append(out, Group{
				Members:    chunk,
				HullPoints: pointsAt(points, chunk),
			})
		}
	}
	return out, nil
}

// Chunk sorts the cluster members by x (ties broken by y, then input index)
// and slices them into runs of at most capacity points. The last chunk of a
// cluster may be smaller; it is never merged with another cluster.
func Chunk(points []orb.Point, members []int, capacity int) ([][]int, error) {
	if len(members) == 0 {
		return nil, ErrEmptyCluster
	}

	sorted := make([]int, len(members))
	copy(sorted, members)
	sort.Slice(sorted, func(a, b int) bool {
		pa, pb := points[sorted[a]], points[sorted[b]]
		if pa[0] != pb[0] {
			return pa[0] < pb[0]
		}
		if pa[1] != pb[1] {
			return pa[1] < pb[1]
		}
		return sorted[a] < sorted[b]
	})

	chunks := make([][]int, 0, (len(sorted)+capacity-1)/capacity)
	for start := 0; start < len(sorted); start += capacity {
		end := min(start+capacity, len(sorted))
		chunks = append(chunks, sorted[start:end])
	}
	return chunks, nil
}

func pointsAt(points []orb.Point, idxs []int) []orb.Point {
	out := make([]orb.Point, len(idxs))
	for i, idx := range idxs {
		out[i] = points[idx]
	}
	return out
}
