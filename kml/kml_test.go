// Copyright (c) 2026 the fatplan authors
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package kml

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb"
)

const sampleDoc = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <name>homepasses</name>
    <Placemark>
      <name>HP-A</name>
      <Point><coordinates>106.80000,-6.20000,0</coordinates></Point>
    </Placemark>
    <Placemark>
      <name>Jalan Melati</name>
      <LineString>
        <coordinates>
          106.80100,-6.20100,0 106.80110,-6.20110,0 106.80120,-6.20120,0
        </coordinates>
      </LineString>
    </Placemark>
    <Placemark>
      <name>broken</name>
      <Point><coordinates>abc,def</coordinates></Point>
    </Placemark>
    <Placemark>
      <name>unnamed geometry ignored</name>
      <Polygon>
        <outerBoundaryIs><LinearRing>
          <coordinates>0,0 1,0 1,1 0,0</coordinates>
        </LinearRing></outerBoundaryIs>
      </Polygon>
    </Placemark>
  </Document>
</kml>`

func TestDecode_PointsAndLines(t *testing.T) {
	placemarks, skipped, err := Decode(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Decode(...) error = %v, want nil", err)
	}
	if skipped != 1 {
		t.Errorf("Decode(...) skipped = %d, want 1", skipped)
	}

	want := []Placemark{
		{
			Name:   "HP-A",
			Points: []orb.Point{{106.8, -6.2}},
		},
		{
			Name: "Jalan Melati",
			Line: true,
			Points: []orb.Point{
				{106.801, -6.201},
				{106.8011, -6.2011},
				{106.8012, -6.2012},
			},
		},
	}
	if diff := cmp.Diff(want, placemarks); diff != "" {
		t.Errorf("Decode(...) mismatch (-want +got):\n%v", diff)
	}
}

func TestDecode_NoValidPlacemarks(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty document", `<kml><Document></Document></kml>`},
		{"only malformed coordinates", `<kml><Document><Placemark><Point><coordinates>x,y</coordinates></Point></Placemark></Document></kml>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Decode(strings.NewReader(tt.doc)); !errors.Is(err, ErrNoPlacemarks) {
				t.Errorf("Decode(...) error = %v, want ErrNoPlacemarks", err)
			}
		})
	}
}

func TestDecode_MalformedXML(t *testing.T) {
	if _, _, err := Decode(strings.NewReader(`<kml><Document>`)); err == nil {
		t.Errorf("Decode(...) error = nil, want non-nil")
	}
}

func TestEncode_StyledDocument(t *testing.T) {
	groups := []Group{
		{
			Label: "FAT A01",
			Full:  true,
			Boundary: orb.Polygon{orb.Ring{
				{106.8, -6.2}, {106.801, -6.2}, {106.801, -6.199}, {106.8, -6.199}, {106.8, -6.2},
			}},
			Members: []Member{
				{ID: "HP-0001", Point: orb.Point{106.8004, -6.1995}},
				{ID: "HP-0002", Point: orb.Point{106.8006, -6.1996}},
			},
		},
		{
			Label:    "FAT A02",
			Full:     false,
			Boundary: orb.Point{106.81, -6.21},
			Members:  []Member{{ID: "HP-0003", Point: orb.Point{106.81, -6.21}}},
		},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, "FAT areas", "test run", groups); err != nil {
		t.Fatalf("Encode(...) error = %v, want nil", err)
	}
	out := buf.String()

	for _, want := range []string{
		`<Style id="fat-full">`,
		`<Style id="fat-below">`,
		`<Style id="fat-label">`,
		"<color>" + colorFullFill + "</color>",
		"<color>" + colorBelowFill + "</color>",
		"#fat-full",
		"#fat-below",
		"2 HP",
		"1 HP",
		"FAT A01",
		"FAT A02",
		"<outerBoundaryIs>",
		labelIconHref,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Encode(...) output missing %q", want)
		}
	}
}

func TestEncode_RoundtripsMemberPoints(t *testing.T) {
	groups := []Group{{
		Label:    "FAT A01",
		Full:     false,
		Boundary: orb.Polygon{orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}},
		Members: []Member{
			{ID: "HP-0001", Point: orb.Point{0.25, 0.25}},
			{ID: "HP-0002", Point: orb.Point{0.75, 0.75}},
		},
	}}

	var buf bytes.Buffer
	if err := Encode(&buf, "FAT areas", "", groups); err != nil {
		t.Fatalf("Encode(...) error = %v, want nil", err)
	}

	placemarks, skipped, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode(Encode(...)) error = %v, want nil", err)
	}
	if skipped != 0 {
		t.Errorf("Decode(Encode(...)) skipped = %d, want 0", skipped)
	}

	byName := make(map[string]orb.Point)
	for _, pm := range placemarks {
		if !pm.Line && len(pm.Points) == 1 {
			byName[pm.Name] = pm.Points[0]
		}
	}
	for _, m := range groups[0].Members {
		got, ok := byName[m.ID]
		if !ok {
			t.Errorf("Decode(Encode(...)) missing member placemark %q", m.ID)
			continue
		}
		if !got.Equal(m.Point) {
			t.Errorf("Decode(Encode(...)) member %q = %v, want %v", m.ID, got, m.Point)
		}
	}
}
