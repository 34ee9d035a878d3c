package widgetprefs

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// VisibilityMap maps widget IDs to whether they render.
// It is persisted as one unit.
type VisibilityMap map[string]bool

// Clone returns an independent copy of m. A nil map clones to an empty one.
func (m VisibilityMap) Clone() VisibilityMap {
	out := make(VisibilityMap, len(m))
	maps.Copy(out, m)
	return out
}

// Equal reports whether m and other hold the same entries.
func (m VisibilityMap) Equal(other VisibilityMap) bool {
	return maps.Equal(m, other)
}

// Keys returns the map's keys, sorted.
func (m VisibilityMap) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}

// EncodeVisibility serializes m as a JSON object.
func EncodeVisibility(m VisibilityMap) ([]byte, error) {
	if m == nil {
		m = VisibilityMap{}
	}
	data, err := json.Marshal(map[string]bool(m))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return data, nil
}

// DecodeVisibility parses a persisted visibility map. Anything other than a
// JSON object whose values are all booleans is rejected with ErrCorruptState.
func DecodeVisibility(data []byte) (VisibilityMap, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: not an object", ErrCorruptState)
	}
	m := make(VisibilityMap, len(raw))
	for id, v := range raw {
		var b bool
		if err := json.Unmarshal(v, &b); err != nil || string(v) == "null" {
			return nil, fmt.Errorf("%w: value for %q is not a boolean", ErrCorruptState, id)
		}
		m[id] = b
	}
	return m, nil
}
