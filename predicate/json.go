package predicate

import (
	"encoding/json"
)

// The JSON form of a predicate tree is used by the web API. Each node is an object with one of the keys "and", "or",
// "not", "always" or, for leaves, the keys "lookup", "op" and "value".

func (n *And) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]Node{"and": {n.Left, n.Right}})
}

func (n *Or) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]Node{"or": {n.Left, n.Right}})
}

func (n *Not) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]Node{"not": n.Node})
}

func (n *Always) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]bool{"always": n.Value})
}

func (n *Leaf) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Lookup string `json:"lookup"`
		Op     string `json:"op"`
		Value  any    `json:"value"`
	}{
		Lookup: n.Lookup,
		Op:     n.Op.String(),
		Value:  n.Value,
	})
}
