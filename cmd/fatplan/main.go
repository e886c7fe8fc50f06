// Copyright (c) 2026 the fatplan authors
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Command fatplan reads homepass points from a KML or GeoJSON file, groups
// them into capacity-bounded FAT areas and writes the styled result back
// out.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/paulmach/orb/geojson"

	"fatplan"
	"fatplan/kml"
)

func main() {
	// A .env file supplies defaults; flags override it.
	_ = godotenv.Load()

	def := fatplan.DefaultConfig()
	var (
		input    = flag.String("input", envStr("FATPLAN_INPUT", ""), "input file (.kml, .geojson or .json)")
		output   = flag.String("output", envStr("FATPLAN_OUTPUT", "fat_areas.kml"), "output file")
		format   = flag.String("format", envStr("FATPLAN_FORMAT", ""), "output format: kml or geojson (default: by output extension)")
		strategy = flag.String("strategy", envStr("FATPLAN_STRATEGY", def.Strategy), "partitioning strategy: proximity or grid")
		proj     = flag.String("projection", envStr("FATPLAN_PROJECTION", def.Projection), "planar reference system: local or mercator")

		capacity = flag.Int("max-group-size", envInt("FATPLAN_MAX_GROUP_SIZE", def.MaxGroupSize), "maximum homepasses per FAT area")
		eps      = flag.Float64("eps", envFloat("FATPLAN_EPS", def.MaxNeighborDistance), "maximum neighbor distance in meters")
		cellSize = flag.Float64("cell-size", envFloat("FATPLAN_CELL_SIZE", def.GridCellSize), "grid cell edge length in meters")
		margin   = flag.Float64("margin", envFloat("FATPLAN_MARGIN", def.BoundaryMargin), "outward boundary margin in meters")
		simplify = flag.Float64("simplify", envFloat("FATPLAN_SIMPLIFY", 0), "boundary simplification tolerance in meters (0 = off)")
		maxPts   = flag.Int("max-points", envInt("FATPLAN_MAX_POINTS", def.MaxPoints), "reject inputs with more points than this")

		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *input == "" {
		log.Error("no input file given, use -input")
		os.Exit(2)
	}

	cfg := fatplan.Config{
		MaxGroupSize:        *capacity,
		MaxNeighborDistance: *eps,
		GridCellSize:        *cellSize,
		BoundaryMargin:      *margin,
		SimplifyTolerance:   *simplify,
		MaxPoints:           *maxPts,
		Strategy:            *strategy,
		Projection:          *proj,
		Logger:              log,
	}

	if err := run(*input, *output, *format, cfg, log); err != nil {
		log.Error("planning failed", "error", err)
		os.Exit(1)
	}
}

func run(input, output, format string, cfg fatplan.Config, log *slog.Logger) error {
	points, err := readPoints(input, log)
	if err != nil {
		return err
	}
	log.Info("input loaded", "file", input, "points", len(points))

	result, err := fatplan.Plan(points, cfg)
	if err != nil {
		return err
	}

	full := 0
	for _, g := range result.Groups {
		if g.Fill == fatplan.FillFull {
			full++
		}
	}
	log.Info("areas planned", "groups", len(result.Groups), "full", full,
		"below", len(result.Groups)-full)

	if format == "" {
		format = formatByExt(output)
	}
	if err := writeResult(output, format, result); err != nil {
		return err
	}
	log.Info("output written", "file", output, "format", format)
	return nil
}

func readPoints(path string, log *slog.Logger) ([]fatplan.Point, error) {
	switch formatByExt(path) {
	case "geojson":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return fatplan.PointsFromFeatureCollection(fc)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		placemarks, skipped, err := kml.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if skipped > 0 {
			log.Warn("skipped malformed coordinate tuples", "count", skipped)
		}
		return pointsFromPlacemarks(placemarks), nil
	}
}

// pointsFromPlacemarks flattens placemarks into homepass records. Line
// vertices get a per-vertex suffix; unnamed features get an input-order ID.
func pointsFromPlacemarks(placemarks []kml.Placemark) []fatplan.Point {
	var out []fatplan.Point
	for _, pm := range placemarks {
		for i, c := range pm.Points {
			id := pm.Name
			switch {
			case id == "":
				id = fmt.Sprintf("HP-%04d", len(out)+1)
			case pm.Line:
				id = fmt.Sprintf("%s/%d", pm.Name, i+1)
			}
			out = append(out, fatplan.Point{ID: id, Coord: c})
		}
	}
	return out
}

func writeResult(path, format string, result *fatplan.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch format {
	case "geojson":
		data, err := result.FeatureCollection().MarshalJSON()
		if err != nil {
			return err
		}
		_, err = f.Write(data)
		return err
	case "kml":
		groups := make([]kml.Group, len(result.Groups))
		for i, g := range result.Groups {
			members := make([]kml.Member, len(g.Points))
			for j, p := range g.Points {
				members[j] = kml.Member{ID: p.ID, Point: p.Coord}
			}
			groups[i] = kml.Group{
				Label:    g.Label,
				Full:     g.Fill == fatplan.FillFull,
				Boundary: g.Boundary,
				Members:  members,
			}
		}
		desc := fmt.Sprintf("FAT areas, run %s", result.RunID)
		return kml.Encode(f, "FAT areas", desc, groups)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func formatByExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return "geojson"
	default:
		return "kml"
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
