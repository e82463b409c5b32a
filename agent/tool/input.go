package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
)

// stringArg returns input[key] when it is a string.
func stringArg(input map[string]any, key string) (string, bool) {
	raw, ok := input[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

// intArg reads an integer the way a JSON payload may carry it: a number,
// a json.Number or a numeric string.
func intArg(input map[string]any, key string, fallback int) (int, error) {
	raw, ok := input[key]
	if !ok || raw == nil {
		return fallback, nil
	}

	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: %s must be finite", contractx.ErrToolInput, key)
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q is not an integer", contractx.ErrToolInput, key, v)
		}
		return int(n), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q is not an integer", contractx.ErrToolInput, key, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %s has unsupported type %T", contractx.ErrToolInput, key, raw)
	}
}

// textsArg reads input["texts"] as a list of strings. A missing key yields nil.
func textsArg(input map[string]any) ([]string, error) {
	raw, ok := input["texts"]
	if !ok || raw == nil {
		return nil, nil
	}

	switch v := raw.(type) {
	case []string:
		return v, nil
	case string:
		return []string{v}, nil
	case []any:
		texts := make([]string, 0, len(v))
		for i, item := range v {
			switch s := item.(type) {
			case string:
				texts = append(texts, s)
			case nil:
				texts = append(texts, "")
			default:
				return nil, fmt.Errorf("%w: texts[%d] has unsupported type %T", contractx.ErrToolInput, i, item)
			}
		}
		return texts, nil
	default:
		return nil, fmt.Errorf("%w: texts has unsupported type %T", contractx.ErrToolInput, raw)
	}
}
