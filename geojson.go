// Copyright (c) 2026 the fatplan authors
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package fatplan

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FeatureCollection renders the result as GeoJSON: one boundary feature per
// group carrying the label, member count and fill tag, followed by the
// member points tagged with their group label.
func (r *Result) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, g := range r.Groups {
		f := geojson.NewFeature(g.Boundary)
		f.Properties = geojson.Properties{
			"name":  g.Label,
			"count": len(g.Points),
			"fill":  g.Fill.String(),
		}
		fc.Append(f)

		for _, p := range g.Points {
			pf := geojson.NewFeature(p.Coord)
			pf.Properties = geojson.Properties{"name": p.ID, "group": g.Label}
			fc.Append(pf)
		}
	}
	return fc
}

// PointsFromFeatureCollection extracts homepasses from a GeoJSON feature
// collection: point features directly, line features as their vertices.
// Identifiers come from the "name" property and are synthesized from input
// order when absent.
func PointsFromFeatureCollection(fc *geojson.FeatureCollection) ([]Point, error) {
	var out []Point
	for _, f := range fc.Features {
		name := ""
		if v, ok := f.Properties["name"].(string); ok {
			name = v
		}
		switch g := f.Geometry.(type) {
		case orb.Point:
			out = append(out, Point{ID: orPointID(name, len(out)), Coord: g})
		case orb.LineString:
			for i, v := range g {
				id := orPointID(name, len(out))
				if name != "" {
					id = fmt.Sprintf("%s/%d", name, i+1)
				}
				out = append(out, Point{ID: id, Coord: v})
			}
		}
	}
	if len(out) == 0 {
		return nil, ErrNoPoints
	}
	return out, nil
}

// orPointID falls back to an input-order identifier when a feature carries
// no name.
func orPointID(name string, ordinal int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("HP-%04d", ordinal+1)
}
