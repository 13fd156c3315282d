package cache

import "encoding/json"

// Serializer converts values to and from the byte form persisted by the disk
// policy.
type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONSerializer persists values as JSON. It is the default for NewDisk;
// cached value types must round-trip through encoding/json.
type JSONSerializer struct{}

func (JSONSerializer) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONSerializer) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
