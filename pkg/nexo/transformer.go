package nexo

import (
	"fmt"
	"strconv"
)

// Transformer converts raw path parameter values. types holds the route's
// parameter type tags keyed by placeholder name.
type Transformer interface {
	Transform(params map[string]string, types map[string]string) (map[string]any, error)
}

// TransformerFunc adapts a function to Transformer.
type TransformerFunc func(params map[string]string, types map[string]string) (map[string]any, error)

// Transform calls f.
func (f TransformerFunc) Transform(params map[string]string, types map[string]string) (map[string]any, error) {
	return f(params, types)
}

// DefaultTransformer converts values tagged int, float or bool. Untagged values
// and unknown tags are passed through as strings.
var DefaultTransformer Transformer = TransformerFunc(transformTyped)

func transformTyped(params map[string]string, types map[string]string) (map[string]any, error) {
	out := make(map[string]any, len(params))

	for name, raw := range params {
		var (
			v   any
			err error
		)

		switch types[name] {
		case "int", "integer":
			v, err = strconv.Atoi(raw)
		case "float", "number":
			v, err = strconv.ParseFloat(raw, 64)
		case "bool", "boolean":
			v, err = strconv.ParseBool(raw)
		default:
			v = raw
		}

		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		out[name] = v
	}

	return out, nil
}
