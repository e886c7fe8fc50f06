// Copyright (c) 2026 the fatplan authors
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package partition

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// DefaultCellSize gives square cells of roughly 250 m² (sqrt(250)).
const DefaultCellSize = 15.8114

// DefaultRescueRadius bounds the search for isolated cells, measured in
// cell widths between cell centers.
const DefaultRescueRadius = 3.0

// Grid implements the grid-overlay strategy: points are counted into fixed
// square cells aligned to the extent minimum, then cells are greedily
// merged into groups. Merge order is descending cell count with (row, col)
// as the tie break, so re-runs on identical input produce identical groups.
type Grid struct {
	// CellSize is the cell edge length in meters.
	CellSize float64

	// Capacity is the maximum group size.
	Capacity int

	// RescueRadius, in cell widths, bounds the centroid-distance search
	// for isolated cells with no adjacent neighbor. Zero means
	// DefaultRescueRadius.
	RescueRadius float64
}

func (s Grid) Name() string { return "grid" }

// cell is one non-empty grid cell. row/col are pure functions of position:
// row = floor((y - minY) / size), col = floor((x - minX) / size).
type cell struct {
	row, col int
	members  []int
	center   orb.Point
}

func (s Grid) Partition(points []orb.Point) ([]Group, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	if s.CellSize <= 0 {
		return nil, fmt.Errorf("partition: grid cell size %v, want > 0", s.CellSize)
	}
	if s.Capacity < 1 {
		return nil, fmt.Errorf("partition: capacity %d, want >= 1", s.Capacity)
	}
	rescue := s.RescueRadius
	if rescue == 0 {
		rescue = DefaultRescueRadius
	}

	cells := s.collectCells(points)
	if len(cells) == 0 {
		return nil, ErrNoPoints
	}

	// Deterministic seed order: biggest cells first.
	sort.Slice(cells, func(a, b int) bool {
		ca, cb := cells[a], cells[b]
		if len(ca.members) != len(cb.members) {
			return len(ca.members) > len(cb.members)
		}
		if ca.row != cb.row {
			return ca.row < cb.row
		}
		return ca.col < cb.col
	})
	byCoord := make(map[[2]int]int, len(cells))
	for i, c := range cells {
		byCoord[[2]int{c.row, c.col}] = i
	}

	visited := make([]bool, len(cells))
	var out []Group

	for si := range cells {
		if visited[si] {
			continue
		}
		seed := cells[si]
		visited[si] = true

		// A single cell can hold more points than the capacity. Fall back
		// to position-sorted chunking for that cell so the group size
		// bound holds for every produced group.
		if len(seed.members) > s.Capacity {
			chunks, err := Chunk(points, seed.members, s.Capacity)
			if err != nil {
				return nil, err
			}
			for _, chunk := range chunks {
				out = append(out, Group{
					Members:    chunk,
					HullPoints: pointsAt(points, chunk),
				})
			}
			continue
		}

		taken := []int{si}
		total := len(seed.members)

		// Breadth-first merge of 4-connected neighbors that still fit.
		queue := []int{si}
		for len(queue) > 0 {
			ci := queue[0]
			queue = queue[1:]
			c := cells[ci]
			for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				ni, ok := byCoord[[2]int{c.row + d[0], c.col + d[1]}]
				if !ok || visited[ni] {
					continue
				}
				if total+len(cells[ni].members) > s.Capacity {
					continue
				}
				visited[ni] = true
				total += len(cells[ni].members)
				taken = append(taken, ni)
				queue = append(queue, ni)
			}
		}

		// Rescue isolated cells within the bounded radius of the seed.
		if total < s.Capacity {
			maxDist := rescue * s.CellSize
			for ri := range cells {
				if visited[ri] {
					continue
				}
				r := cells[ri]
				if planarDist(r.center, seed.center) > maxDist {
					continue
				}
				if total+len(r.members) > s.Capacity {
					continue
				}
				visited[ri] = true
				total += len(r.members)
				taken = append(taken, ri)
			}
		}

		var members []int
		var corners []orb.Point
		for _, ci := range taken {
			members = append(members, cells[ci].members...)
			corners = append(corners, s.cellCorners(cells[ci])...)
		}
		out = append(out, Group{Members: members, HullPoints: corners})
	}
	return out, nil
}

// collectCells bins every point into its cell and drops empty cells.
func (s Grid) collectCells(points []orb.Point) []cell {
	bound := orb.MultiPoint(points).Bound()
	minX, minY := bound.Min[0], bound.Min[1]

	byCoord := make(map[[2]int]*cell)
	for i, p := range points {
		row := int(math.Floor((p[1] - minY) / s.CellSize))
		col := int(math.Floor((p[0] - minX) / s.CellSize))
		key := [2]int{row, col}
		c, ok := byCoord[key]
		if !ok {
			c = &cell{
				row: row,
				col: col,
				center: orb.Point{
					minX + (float64(col)+0.5)*s.CellSize,
					minY + (float64(row)+0.5)*s.CellSize,
				},
			}
			byCoord[key] = c
		}
		c.members = append(c.members, i)
	}

	cells := make([]cell, 0, len(byCoord))
	for _, c := range byCoord {
		cells = append(cells, *c)
	}
	return cells
}

func (s Grid) cellCorners(c cell) []orb.Point {
	half := s.CellSize / 2
	return []orb.Point{
		{c.center[0] - half, c.center[1] - half},
		{c.center[0] + half, c.center[1] - half},
		{c.center[0] + half, c.center[1] + half},
		{c.center[0] - half, c.center[1] + half},
	}
}

func planarDist(a, b orb.Point) float64 {
	return math.Hypot(a[0]-b[0], a[1]-b[1])
}
