package js

import (
	"encoding/json"
	"sort"

	"github.com/wippyai/browser-runtime/errors"
)

// FromJSON decodes a JSON document into values. Object keys are stored in
// sorted order so repeated decodes of the same body look identical.
func FromJSON(data []byte) (Value, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(errors.PhaseFetch, errors.KindInvalidData, err, "decode json body")
	}
	return fromRaw(raw), nil
}

func fromRaw(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Null
	case bool:
		return Bool(t)
	case float64:
		return Number(t)
	case string:
		return String(t)
	case []any:
		arr := NewArray()
		for _, item := range t {
			arr.Push(fromRaw(item))
		}
		return arr
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			_ = obj.SetProp(k, fromRaw(t[k]))
		}
		return obj
	default:
		return Undefined
	}
}
