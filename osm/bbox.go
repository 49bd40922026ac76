package osm

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"strconv"
	"strings"
)

// ParseBBox parses a bounding box in the form "minLon,minLat,maxLon,maxLat".
func ParseBBox(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, errors.Errorf("BBOX '%s' must consist of four comma separated coordinates", s)
	}

	var coordinates [4]float64
	for i, part := range parts {
		coordinate, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return orb.Bound{}, errors.Wrapf(err, "Coordinate '%s' of BBOX '%s' is not a number", part, s)
		}
		coordinates[i] = coordinate
	}

	bound := orb.Bound{
		Min: orb.Point{coordinates[0], coordinates[1]},
		Max: orb.Point{coordinates[2], coordinates[3]},
	}
	if bound.Min.X() > bound.Max.X() || bound.Min.Y() > bound.Max.Y() {
		return orb.Bound{}, errors.Errorf("BBOX '%s' must start with the lower left corner", s)
	}
	return bound, nil
}

// IsWithin returns true when the geometry of the record lies in or intersects the bound. Records without geometry
// are never within a bound.
func (r *Record) IsWithin(bound orb.Bound) bool {
	switch geometry := r.Geometry.(type) {
	case nil:
		return false
	case orb.Point:
		return bound.Contains(geometry)
	default:
		return bound.Intersects(geometry.Bound())
	}
}

// Within returns all records within the bound.
func (d *Dataset) Within(bound orb.Bound) []*Record {
	var records []*Record
	for _, record := range d.Records {
		if record.IsWithin(bound) {
			records = append(records, record)
		}
	}
	sigolo.Debugf("%d of %d records are within %v", len(records), len(d.Records), bound)
	return records
}
