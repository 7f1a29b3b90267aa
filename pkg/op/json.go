package op

import (
	goccyjson "github.com/goccy/go-json"
)

// Project builds the JSON projection spec.md §6 mandates: kind, name, the
// variant-specific fields, and whether the operation is present in the
// reference graph (scalar ops inserted by the Synchronizer are not).
func Project(o Operation, inGraph bool) map[string]any {
	fields := o.Fields()
	out := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		out[k] = v
	}
	out["kind"] = o.Tag().String()
	out["name"] = o.Name()
	out["in_graph"] = inGraph
	return out
}

// MarshalJSON encodes an operation's JSON projection using goccy/go-json.
// Neither the frontier expander nor the search loop calls it; it is
// available to callers that persist or display operations.
func MarshalJSON(o Operation, inGraph bool) ([]byte, error) {
	return goccyjson.Marshal(Project(o, inGraph))
}
