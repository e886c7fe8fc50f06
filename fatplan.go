// Copyright (c) 2026 the fatplan authors
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package fatplan assigns homepass point locations to capacity-bounded FAT
// areas and produces a convex boundary for each area.
//
// The pipeline is a synchronous batch computation: project the geographic
// input to local planar meters, partition it with the configured strategy,
// verify the capacity and membership invariants, build boundaries with an
// optional outward margin, and project everything back to geographic
// coordinates.
package fatplan

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"

	"fatplan/geom"
	"fatplan/geoproj"
	"fatplan/partition"
)

// Strategy and projection names accepted by Config.
const (
	StrategyProximity = "proximity"
	StrategyGrid      = "grid"

	ProjectionLocal    = "local"
	ProjectionMercator = "mercator"
)

// ErrNoPoints is returned when Plan receives an empty point set.
var ErrNoPoints = errors.New("fatplan: no input points")

// ErrTooManyPoints guards against pathological inputs before the quadratic
// or memory-heavy stages run.
var ErrTooManyPoints = errors.New("fatplan: input exceeds configured maximum point count")

// CapacityError reports a produced group that exceeds the configured
// capacity. It indicates a partitioning bug and always aborts the run.
type CapacityError struct {
	Label    string
	Count    int
	Capacity int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("fatplan: group %s has %d members, capacity is %d", e.Label, e.Count, e.Capacity)
}

// Point is one homepass: a stable identifier and its geographic coordinate
// (lon, lat degrees).
type Point struct {
	ID    string
	Coord orb.Point
}

// FillTag classifies a group by size against the capacity.
type FillTag int

const (
	// FillBelow marks a group with fewer members than the capacity.
	FillBelow FillTag = iota
	// FillFull marks a group whose member count reached the capacity.
	FillFull
)

func (t FillTag) String() string {
	if t == FillFull {
		return "full"
	}
	return "below-threshold"
}

// Group is one finalized FAT area. It is never mutated after Plan returns.
type Group struct {
	// Label is unique within a run and strictly increasing across groups.
	Label string

	// Points are the member homepasses in geographic coordinates.
	Points []Point

	// Fill tags the group as full (len(Points) >= capacity) or below.
	Fill FillTag

	// Boundary is the group outline in geographic coordinates: an
	// orb.Polygon, or for degenerate groups with zero margin an
	// orb.LineString or orb.Point marker.
	Boundary orb.Geometry
}

// Result is the outcome of one planning run.
type Result struct {
	// RunID uniquely identifies the run in logs and output documents.
	RunID string

	Groups []Group
}

// Config holds the recognized planning options. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	// MaxGroupSize is the FAT area capacity.
	MaxGroupSize int

	// MaxNeighborDistance is the clustering eps in meters (proximity
	// strategy only).
	MaxNeighborDistance float64

	// GridCellSize is the cell edge length in meters (grid strategy only).
	GridCellSize float64

	// BoundaryMargin grows each boundary outward, in meters.
	BoundaryMargin float64

	// SimplifyTolerance, when positive, Douglas-Peucker-simplifies the
	// boundary rings with the given tolerance in meters.
	SimplifyTolerance float64

	// MaxPoints rejects larger inputs before clustering.
	MaxPoints int

	// Strategy selects the partitioner: StrategyProximity or StrategyGrid.
	Strategy string

	// Projection selects the planar reference system: ProjectionLocal or
	// ProjectionMercator.
	Projection string

	// Logger receives progress and non-fatal anomaly reports. Nil
	// disables logging.
	Logger *slog.Logger
}

// DefaultConfig returns the deployment defaults: capacity 16, 100 m
// neighbor distance, sqrt(250) m grid cells, 20 m boundary margin.
func DefaultConfig() Config {
	return Config{
		MaxGroupSize:        16,
		MaxNeighborDistance: 100,
		GridCellSize:        partition.DefaultCellSize,
		BoundaryMargin:      20,
		MaxPoints:           50000,
		Strategy:            StrategyProximity,
		Projection:          ProjectionLocal,
	}
}

// Plan partitions the homepasses into FAT areas.
//
// Either a complete, invariant-satisfying result is returned, or an error;
// there is no partial output. Every input point appears in exactly one
// group and no group exceeds cfg.MaxGroupSize.
func Plan(points []Point, cfg Config) (*Result, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	if cfg.MaxPoints > 0 && len(points) > cfg.MaxPoints {
		return nil, fmt.Errorf("%w: %d points, maximum %d", ErrTooManyPoints, len(points), cfg.MaxPoints)
	}
	if cfg.MaxGroupSize < 1 {
		return nil, fmt.Errorf("fatplan: max group size %d, want >= 1", cfg.MaxGroupSize)
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	runID := uuid.NewString()
	log = log.With("run", runID)

	coords := make([]orb.Point, len(points))
	for i, p := range points {
		coords[i] = p.Coord
	}

	proj, err := newProjection(cfg, geoproj.Centroid(coords))
	if err != nil {
		return nil, err
	}
	planar, err := geoproj.ForwardAll(proj, coords)
	if err != nil {
		return nil, err
	}

	strategy, err := newStrategy(cfg)
	if err != nil {
		return nil, err
	}
	log.Info("partitioning", "strategy", strategy.Name(), "points", len(points))

	protos, err := strategy.Partition(planar)
	if err != nil {
		return nil, err
	}
	if err := verifyPartition(protos, len(points), cfg.MaxGroupSize); err != nil {
		return nil, err
	}

	builder := &geom.Builder{Margin: cfg.BoundaryMargin, Log: log}
	groups := make([]Group, len(protos))
	for i, proto := range protos {
		label := fmt.Sprintf("FAT A%02d", i+1)

		boundary, err := builder.Boundary(proto.HullPoints)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", label, err)
		}
		if cfg.SimplifyTolerance > 0 {
			boundary = simplify.DouglasPeucker(cfg.SimplifyTolerance).Simplify(boundary)
		}
		boundary, err = unprojectBoundary(proj, boundary)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", label, err)
		}

		members := make([]Point, len(proto.Members))
		for j, idx := range proto.Members {
			members[j] = points[idx]
		}

		fill := FillBelow
		if len(members) >= cfg.MaxGroupSize {
			fill = FillFull
		}
		groups[i] = Group{Label: label, Points: members, Fill: fill, Boundary: boundary}
	}

	log.Info("plan complete", "groups", len(groups))
	return &Result{RunID: runID, Groups: groups}, nil
}

func newProjection(cfg Config, origin orb.Point) (geoproj.Projection, error) {
	switch cfg.Projection {
	case ProjectionLocal, "":
		return geoproj.NewLocal(origin)
	case ProjectionMercator:
		return geoproj.NewMercator(origin)
	default:
		return nil, fmt.Errorf("fatplan: unknown projection %q", cfg.Projection)
	}
}

func newStrategy(cfg Config) (partition.Strategy, error) {
	switch cfg.Strategy {
	case StrategyProximity, "":
		return partition.Proximity{
			Eps:      cfg.MaxNeighborDistance,
			Capacity: cfg.MaxGroupSize,
		}, nil
	case StrategyGrid:
		return partition.Grid{
			CellSize: cfg.GridCellSize,
			Capacity: cfg.MaxGroupSize,
		}, nil
	default:
		return nil, fmt.Errorf("fatplan: unknown strategy %q", cfg.Strategy)
	}
}

// verifyPartition asserts the structural invariants: every point assigned
// exactly once, no group above capacity, no empty group.
func verifyPartition(protos []partition.Group, numPoints, capacity int) error {
	seen := make([]bool, numPoints)
	for i, proto := range protos {
		label := fmt.Sprintf("FAT A%02d", i+1)
		if len(proto.Members) == 0 {
			return fmt.Errorf("fatplan: group %s finalized with zero members", label)
		}
		if len(proto.Members) > capacity {
			return &CapacityError{Label: label, Count: len(proto.Members), Capacity: capacity}
		}
		for _, idx := range proto.Members {
			if idx < 0 || idx >= numPoints {
				return fmt.Errorf("fatplan: group %s references unknown point %d", label, idx)
			}
			if seen[idx] {
				return fmt.Errorf("fatplan: point %d assigned to more than one group", idx)
			}
			seen[idx] = true
		}
	}
	for idx, ok := range seen {
		if !ok {
			return fmt.Errorf("fatplan: point %d not assigned to any group", idx)
		}
	}
	return nil
}

// unprojectBoundary maps a planar boundary shape back to geographic
// coordinates.
func unprojectBoundary(proj geoproj.Projection, g orb.Geometry) (orb.Geometry, error) {
	switch b := g.(type) {
	case orb.Point:
		return proj.Inverse(b)
	case orb.LineString:
		pts, err := geoproj.InverseAll(proj, b)
		if err != nil {
			return nil, err
		}
		return orb.LineString(pts), nil
	case orb.Polygon:
		out := make(orb.Polygon, len(b))
		for i, ring := range b {
			pts, err := geoproj.InverseAll(proj, ring)
			if err != nil {
				return nil, err
			}
			out[i] = orb.Ring(pts)
		}
		return out, nil
	default:
		return nil, &geom.GeometryError{Op: "unproject", Reason: fmt.Sprintf("unsupported shape %T", g)}
	}
}
