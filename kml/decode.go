// Copyright (c) 2026 the fatplan authors
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package kml reads homepass placemarks from KML and writes styled FAT-area
// documents back out.
package kml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// ErrNoPlacemarks is returned when a document contains no usable points.
var ErrNoPlacemarks = errors.New("kml: no placemark with valid coordinates found")

// Placemark is one named feature from the input document. A Point
// placemark carries a single coordinate; a LineString placemark carries all
// of its vertices.
type Placemark struct {
	Name   string
	Line   bool
	Points []orb.Point
}

// Decode reads every Point and LineString placemark from r in one
// streaming pass. Malformed coordinate tuples are skipped; the count of
// skipped tuples is returned so callers can report them. An error is
// returned only when decoding fails outright or no valid point remains.
func Decode(r io.Reader) ([]Placemark, int, error) {
	dec := xml.NewDecoder(r)

	var (
		placemarks  []Placemark
		skipped     int
		inPlacemark bool
		name        string
		geometry    string
		coords      []string
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, skipped, fmt.Errorf("kml: decode: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "Placemark":
				inPlacemark, name, geometry, coords = true, "", "", coords[:0]
			case "name":
				if inPlacemark {
					_ = dec.DecodeElement(&name, &el)
				}
			case "Point", "LineString":
				if inPlacemark {
					geometry = el.Name.Local
				}
			case "coordinates":
				if inPlacemark && geometry != "" {
					var raw string
					_ = dec.DecodeElement(&raw, &el)
					coords = append(coords, raw)
				}
			}
		case xml.EndElement:
			if el.Name.Local != "Placemark" || !inPlacemark {
				continue
			}
			inPlacemark = false

			var pts []orb.Point
			for _, raw := range coords {
				parsed, bad := parseCoordinates(raw)
				pts = append(pts, parsed...)
				skipped += bad
			}
			if len(pts) == 0 {
				continue
			}
			placemarks = append(placemarks, Placemark{
				Name:   strings.TrimSpace(name),
				Line:   geometry == "LineString",
				Points: pts,
			})
		}
	}

	if len(placemarks) == 0 {
		return nil, skipped, ErrNoPlacemarks
	}
	return placemarks, skipped, nil
}

// parseCoordinates splits a KML coordinate blob ("lon,lat[,alt] ..." tuples
// separated by whitespace) into points, counting malformed tuples.
func parseCoordinates(raw string) ([]orb.Point, int) {
	var (
		pts []orb.Point
		bad int
	)
	for _, tuple := range strings.Fields(raw) {
		parts := strings.Split(tuple, ",")
		if len(parts) < 2 {
			bad++
			continue
		}
		lon, errLon := strconv.ParseFloat(parts[0], 64)
		lat, errLat := strconv.ParseFloat(parts[1], 64)
		if errLon != nil || errLat != nil {
			bad++
			continue
		}
		pts = append(pts, orb.Point{lon, lat})
	}
	return pts, bad
}
