package domain

import (
	"encoding/json"
	"math"
)

// Attributes is the schema-less additional_data of an event. Readers ask for
// a typed value and get ok=false when the key is missing or has another type.
type Attributes map[string]any

func (a Attributes) Float(key string) (float64, bool) {
	v, ok := a[key]
	if !ok {
		return 0, false
	}

	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// OrEmpty never returns nil.
func (a Attributes) OrEmpty() Attributes {
	if a == nil {
		return Attributes{}
	}
	return a
}
