package osm

import "fmt"

type ObjectType int

const (
	ObjectNode ObjectType = iota
	ObjectWay
	ObjectRelation
)

var AllObjectTypes = []ObjectType{ObjectNode, ObjectWay, ObjectRelation}

func (o ObjectType) String() string {
	switch o {
	case ObjectNode:
		return "node"
	case ObjectWay:
		return "way"
	case ObjectRelation:
		return "relation"
	}
	return fmt.Sprintf("[!UNKNOWN ObjectType %d]", o)
}
