// Copyright (c) 2026 the fatplan authors
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package kml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/paulmach/orb"
)

// Style IDs referenced by the encoded placemarks.
const (
	styleFull  = "fat-full"
	styleBelow = "fat-below"
	styleLabel = "fat-label"
)

// KML colors are aabbggrr: translucent fills, opaque width-2 outlines.
const (
	colorFullFill  = "3200ff00" // translucent green
	colorBelowFill = "320000ff" // translucent red
	colorLine      = "ff0000ff" // opaque red outline on both styles

	labelIconHref = "http://maps.google.com/mapfiles/kml/shapes/placemark_circle.png"
)

// Member is a single homepass listed under its group folder.
type Member struct {
	ID    string
	Point orb.Point
}

// Group is one FAT area to serialize: its label, the boundary shape in
// geographic coordinates, whether it reached capacity, and its members.
type Group struct {
	Label    string
	Full     bool
	Boundary orb.Geometry
	Members  []Member
}

// Encode writes a styled KML document: per group a boundary placemark, a
// label point at the boundary centroid with the member count in the
// description, and a folder with the member points.
func Encode(w io.Writer, name, description string, groups []Group) error {
	doc := document{
		Name:        name,
		Description: description,
		Styles: []style{
			{
				ID:   styleFull,
				Poly: &polyStyle{Color: colorFullFill},
				Line: &lineStyle{Color: colorLine, Width: 2},
			},
			{
				ID:   styleBelow,
				Poly: &polyStyle{Color: colorBelowFill},
				Line: &lineStyle{Color: colorLine, Width: 2},
			},
			{
				ID:    styleLabel,
				Icon:  &iconStyle{Icon: icon{Href: labelIconHref}},
				Label: &labelStyle{Scale: 0.8},
			},
		},
	}

	for _, g := range groups {
		styleURL := "#" + styleBelow
		if g.Full {
			styleURL = "#" + styleFull
		}
		desc := fmt.Sprintf("%d HP", len(g.Members))

		pm := placemark{
			Name:        g.Label,
			Description: desc,
			StyleURL:    styleURL,
		}
		switch b := g.Boundary.(type) {
		case orb.Polygon:
			if len(b) == 0 {
				return fmt.Errorf("kml: group %s has an empty polygon boundary", g.Label)
			}
			pm.Polygon = &polygon{
				Outer: boundaryIs{Ring: linearRing{Coordinates: coordinates(b[0])}},
			}
		case orb.LineString:
			pm.LineString = &lineString{Coordinates: coordinates(b)}
		case orb.Point:
			pm.Point = &point{Coordinates: coordinates([]orb.Point{b})}
		default:
			return fmt.Errorf("kml: group %s has unsupported boundary type %T", g.Label, g.Boundary)
		}
		doc.Placemarks = append(doc.Placemarks, pm)

		doc.Placemarks = append(doc.Placemarks, placemark{
			Name:        g.Label,
			Description: desc,
			StyleURL:    "#" + styleLabel,
			Point:       &point{Coordinates: coordinates([]orb.Point{boundaryCenter(g.Boundary)})},
		})

		folder := folder{Name: g.Label}
		for _, m := range g.Members {
			folder.Placemarks = append(folder.Placemarks, placemark{
				Name:  m.ID,
				Point: &point{Coordinates: coordinates([]orb.Point{m.Point})},
			})
		}
		doc.Folders = append(doc.Folders, folder)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(kmlRoot{Xmlns: "http://www.opengis.net/kml/2.2", Document: doc}); err != nil {
		return fmt.Errorf("kml: encode: %w", err)
	}
	return enc.Flush()
}

// boundaryCenter is the label anchor: the vertex mean of the boundary.
func boundaryCenter(g orb.Geometry) orb.Point {
	var pts []orb.Point
	switch b := g.(type) {
	case orb.Polygon:
		if len(b) > 0 {
			pts = b[0]
		}
	case orb.LineString:
		pts = b
	case orb.Point:
		return b
	}
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

func coordinates(pts []orb.Point) string {
	var sb strings.Builder
	for i, p := range pts {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%.8f,%.8f,0", p[0], p[1])
	}
	return sb.String()
}

// Serialization structs. Element names follow the KML 2.2 schema.

type kmlRoot struct {
	XMLName  xml.Name `xml:"kml"`
	Xmlns    string   `xml:"xmlns,attr"`
	Document document `xml:"Document"`
}

type document struct {
	Name        string      `xml:"name"`
	Description string      `xml:"description,omitempty"`
	Styles      []style     `xml:"Style"`
	Placemarks  []placemark `xml:"Placemark"`
	Folders     []folder    `xml:"Folder"`
}

type folder struct {
	Name       string      `xml:"name"`
	Placemarks []placemark `xml:"Placemark"`
}

type style struct {
	ID    string      `xml:"id,attr"`
	Poly  *polyStyle  `xml:"PolyStyle,omitempty"`
	Line  *lineStyle  `xml:"LineStyle,omitempty"`
	Icon  *iconStyle  `xml:"IconStyle,omitempty"`
	Label *labelStyle `xml:"LabelStyle,omitempty"`
}

type polyStyle struct {
	Color string `xml:"color"`
}

type lineStyle struct {
	Color string `xml:"color"`
	Width int    `xml:"width"`
}

type iconStyle struct {
	Icon icon `xml:"Icon"`
}

type icon struct {
	Href string `xml:"href"`
}

type labelStyle struct {
	Scale float64 `xml:"scale"`
}

type placemark struct {
	Name        string      `xml:"name"`
	Description string      `xml:"description,omitempty"`
	StyleURL    string      `xml:"styleUrl,omitempty"`
	Polygon     *polygon    `xml:"Polygon,omitempty"`
	LineString  *lineString `xml:"LineString,omitempty"`
	Point       *point      `xml:"Point,omitempty"`
}

type polygon struct {
	Outer boundaryIs `xml:"outerBoundaryIs"`
}

type boundaryIs struct {
	Ring linearRing `xml:"LinearRing"`
}

type linearRing struct {
	Coordinates string `xml:"coordinates"`
}

type lineString struct {
	Coordinates string `xml:"coordinates"`
}

type point struct {
	Coordinates string `xml:"coordinates"`
}
