package cas

import (
	"fmt"
	"io"
	"reflect"

	"github.com/shamaton/msgpack/v2"
	"github.com/timewinder-dev/ecmastep/inspect"
)

// TypedEntry wraps serialized data with a type tag for deserialization.
type TypedEntry struct {
	TypeTag string
	Data    []byte
}

func (t *TypedEntry) Serialize(w io.Writer) error {
	return msgpack.MarshalWrite(w, t)
}

func (t *TypedEntry) Deserialize(r io.Reader) error {
	return msgpack.UnmarshalRead(r, t)
}

var typeRegistry = make(map[string]reflect.Type)

func registerType(tag string, example Hashable) {
	typeRegistry[tag] = reflect.TypeOf(example)
}

func init() {
	registerType("SnapshotRef", &SnapshotRef{})
	registerType("EnvironmentRef", &EnvironmentRef{})
	registerType("Snapshot", &inspect.Snapshot{})
}

func getTypeTag(item Hashable) string {
	t := reflect.TypeOf(item)
	for tag, regType := range typeRegistry {
		if regType == t {
			return tag
		}
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

func createInstance(tag string) (Hashable, error) {
	regType, ok := typeRegistry[tag]
	if !ok {
		return nil, fmt.Errorf("unknown type tag: %s", tag)
	}
	if regType.Kind() != reflect.Ptr {
		return nil, fmt.Errorf("type %s is not a pointer type", tag)
	}
	h, ok := reflect.New(regType.Elem()).Interface().(Hashable)
	if !ok {
		return nil, fmt.Errorf("type %s does not implement Hashable", tag)
	}
	return h, nil
}
