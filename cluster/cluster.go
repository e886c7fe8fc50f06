// Copyright (c) 2026 the fatplan authors
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package cluster groups planar points by proximity.
//
// Two points belong to the same cluster when they are connected through a
// chain of points in which each consecutive pair is at most eps apart. With
// the minimum group size fixed at one this is exactly the connected
// components of the "within eps" graph, so no point is ever discarded as
// noise.
package cluster

import (
	"errors"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/quadtree"
)

// ErrNoPoints is returned when clustering is requested on an empty set.
var ErrNoPoints = errors.New("cluster: no points to cluster")

// ErrBadEps is returned for a non-positive neighbor distance.
var ErrBadEps = errors.New("cluster: eps must be positive")

// node attaches the input index to a point so quadtree hits can be mapped
// back to the input slice.
type node struct {
	pt  orb.Point
	idx int
}

func (n node) Point() orb.Point { return n.pt }

// Labels assigns a cluster ID to every point. IDs are consecutive integers
// starting at zero, ordered by the input index of each cluster's first
// member, which makes the labeling deterministic for a fixed input order.
//
// The eps-neighborhood queries run against a quadtree, so the expected cost
// is O(n log n) for typical survey data rather than the naive O(n^2).
func Labels(points []orb.Point, eps float64) ([]int, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	if eps <= 0 {
		return nil, ErrBadEps
	}

	bound := orb.MultiPoint(points).Bound().Pad(eps)
	qt := quadtree.New(bound)
	for i := range points {
		if err := qt.Add(node{pt: points[i], idx: i}); err != nil {
			return nil, err
		}
	}

	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = -1
	}

	var (
		buf   []orb.Pointer
		queue []int
		next  int
	)
	for i := range points {
		if labels[i] >= 0 {
			continue
		}
		labels[i] = next
		queue = append(queue[:0], i)

		// Breadth-first expansion over the eps graph.
		for len(queue) > 0 {
			j := queue[0]
			queue = queue[1:]
			p := points[j]

			box := orb.Bound{
				Min: orb.Point{p[0] - eps, p[1] - eps},
				Max: orb.Point{p[0] + eps, p[1] + eps},
			}
			buf = qt.InBound(buf[:0], box)
			for _, ptr := range buf {
				k := ptr.(node).idx
				if labels[k] >= 0 || planar.Distance(p, points[k]) > eps {
					continue
				}
				labels[k] = next
				queue = append(queue, k)
			}
		}
		next++
	}
	return labels, nil
}

// Groups converts per-point labels into member index lists, ordered by
// cluster ID. Members keep their input order.
func Groups(labels []int) [][]int {
	max := -1
	for _, l := range labels {
		if l > max {
			max = l
		}
	}
	groups := make([][]int, max+1)
	for i, l := range labels {
		groups[l] = append(groups[l], i)
	}
	return groups
}
