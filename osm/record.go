package osm

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"strings"
	"time"
)

// Record is one tagged OSM object with the metadata that can be searched for.
type Record struct {
	ID        int64
	Type      ObjectType
	Geometry  orb.Geometry
	Tags      map[string]string
	Version   int
	Changeset int64
	User      string
	UserID    int64
	Timestamp time.Time
}

// Value returns the value for the lookup key or nil if the record has no such value. Tags are addressed by
// "tags.<key>", the lookup "tags" itself is nil for records without tags.
func (r *Record) Value(lookup string) any {
	if key, isTag := strings.CutPrefix(lookup, TagsField+"."); isTag {
		value, ok := r.Tags[key]
		if !ok {
			return nil
		}
		return value
	}

	switch lookup {
	case "id":
		return r.ID
	case "type":
		return r.Type.String()
	case "version":
		return int64(r.Version)
	case "changeset":
		return r.Changeset
	case "user":
		if r.User == "" {
			return nil
		}
		return r.User
	case "uid":
		return r.UserID
	case "timestamp":
		if r.Timestamp.IsZero() {
			return nil
		}
		return r.Timestamp
	case TagsField:
		if len(r.Tags) == 0 {
			return nil
		}
		return r.Tags
	}

	return nil
}

// recordCollector creates records of all tagged objects. Untagged nodes are only remembered for the geometry of ways.
// Relations are collected without geometry.
type recordCollector struct {
	nodeLocations map[osm.NodeID]orb.Point
	records       []*Record
}

func newRecordCollector() *recordCollector {
	return &recordCollector{}
}

func (c *recordCollector) Name() string {
	return "RecordCollector"
}

func (c *recordCollector) Init() error {
	c.nodeLocations = map[osm.NodeID]orb.Point{}
	c.records = nil
	return nil
}

func (c *recordCollector) HandleNode(node *osm.Node) error {
	c.nodeLocations[node.ID] = orb.Point{node.Lon, node.Lat}
	if len(node.Tags) == 0 {
		return nil
	}

	c.records = append(c.records, &Record{
		ID:        int64(node.ID),
		Type:      ObjectNode,
		Geometry:  orb.Point{node.Lon, node.Lat},
		Tags:      node.Tags.Map(),
		Version:   node.Version,
		Changeset: int64(node.ChangesetID),
		User:      node.User,
		UserID:    int64(node.UserID),
		Timestamp: node.Timestamp,
	})
	return nil
}

func (c *recordCollector) HandleWay(way *osm.Way) error {
	if len(way.Tags) == 0 {
		return nil
	}

	var lineString orb.LineString
	for _, wayNode := range way.Nodes {
		location, ok := c.nodeLocations[wayNode.ID]
		if !ok {
			if wayNode.Lat == 0 && wayNode.Lon == 0 {
				sigolo.Tracef("Node %d of way %d not found, skip it", wayNode.ID, way.ID)
				continue
			}
			location = orb.Point{wayNode.Lon, wayNode.Lat}
		}
		lineString = append(lineString, location)
	}

	var geometry orb.Geometry
	if len(lineString) > 0 {
		geometry = lineString
	}
	if len(lineString) >= 4 && lineString[0] == lineString[len(lineString)-1] {
		geometry = orb.Polygon{orb.Ring(lineString)}
	}

	c.records = append(c.records, &Record{
		ID:        int64(way.ID),
		Type:      ObjectWay,
		Geometry:  geometry,
		Tags:      way.Tags.Map(),
		Version:   way.Version,
		Changeset: int64(way.ChangesetID),
		User:      way.User,
		UserID:    int64(way.UserID),
		Timestamp: way.Timestamp,
	})
	return nil
}

func (c *recordCollector) HandleRelation(relation *osm.Relation) error {
	if len(relation.Tags) == 0 {
		return nil
	}

	c.records = append(c.records, &Record{
		ID:        int64(relation.ID),
		Type:      ObjectRelation,
		Tags:      relation.Tags.Map(),
		Version:   relation.Version,
		Changeset: int64(relation.ChangesetID),
		User:      relation.User,
		UserID:    int64(relation.UserID),
		Timestamp: relation.Timestamp,
	})
	return nil
}

func (c *recordCollector) Done() error {
	sigolo.Debugf("Collected %d records", len(c.records))
	c.nodeLocations = nil
	return nil
}
