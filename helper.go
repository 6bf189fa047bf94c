// FILE: twconfig/helper.go
package twconfig

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// flattenMap converts a nested map[string]any to a flat map with dot-notation paths.
// Lists are leaves. Empty maps produce no entries.
func flattenMap(nested map[string]any, prefix string) map[string]any {
	flat := make(map[string]any)

	for key, value := range nested {
		newPath := key
		if prefix != "" {
			newPath = prefix + "." + key
		}

		if nestedMap, isMap := value.(map[string]any); isMap {
			for subPath, subValue := range flattenMap(nestedMap, newPath) {
				flat[subPath] = subValue
			}
		} else {
			flat[newPath] = value
		}
	}

	return flat
}

// setNestedValue sets a value in a nested map using a dot-notation path.
// It creates intermediate maps if they don't exist.
// If a segment exists but is not a map, it will be overwritten by a new map.
func setNestedValue(nested map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	current := nested

	for i := 0; i < len(segments)-1; i++ {
		segment := segments[i]

		next, exists := current[segment]
		if nextMap, isMap := next.(map[string]any); exists && isMap {
			current = nextMap
			continue
		}

		newMap := make(map[string]any)
		current[segment] = newMap
		current = newMap
	}

	current[segments[len(segments)-1]] = value
}

// mergeMaps deep-merges overlay onto base and returns a new map.
// Maps merge key by key; every other value in overlay replaces the base value.
func mergeMaps(base, overlay map[string]any) map[string]any {
	out := deepCopyMap(base)
	if out == nil {
		out = make(map[string]any, len(overlay))
	}

	for key, value := range overlay {
		overlayMap, overlayIsMap := value.(map[string]any)
		baseMap, baseIsMap := out[key].(map[string]any)
		if overlayIsMap && baseIsMap {
			out[key] = mergeMaps(baseMap, overlayMap)
			continue
		}
		out[key] = deepCopyValue(value)
	}

	return out
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return v
	}
}

// normalizeValue converts decoder output into the canonical value set used by
// the record: map[string]any, []any, string, bool, int64, float64 and nil.
func normalizeValue(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			n, err := normalizeValue(item)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			n, err := normalizeValue(item)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(k)] = n
		}
		return out, nil
	case []map[string]any:
		out := make([]any, len(val))
		for i, item := range val {
			n, err := normalizeValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			n, err := normalizeValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case []string:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out, nil
	case json.Number:
		// A decimal point or exponent makes the literal a float
		if !strings.ContainsAny(val.String(), ".eE") {
			if i, err := val.Int64(); err == nil {
				return i, nil
			}
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val.String(), err)
		}
		return f, nil
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return float64(val), nil
		}
		return int64(val), nil
	case float32:
		return float64(val), nil
	case string, bool, int64, float64, nil:
		return val, nil
	default:
		// TOML datetimes and similar scalars are kept in their string form
		return fmt.Sprint(val), nil
	}
}

// parseValue attempts to parse an override string into a scalar.
func parseValue(s string) any {
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}

	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}

	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}

	return s
}

// splitList splits a comma-separated override into a list, dropping blanks.
func splitList(s string) []any {
	parts := strings.Split(s, ",")
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// isListPath reports whether an override path addresses a list-valued field.
// Both pluginOptions.<name>.themes and the top-level <name>.themes shorthand
// count.
func isListPath(path string) bool {
	if path == keyContent {
		return true
	}
	segments := strings.Split(path, ".")
	switch len(segments) {
	case 2:
		return segments[0] != keyTheme && segments[0] != keyPluginOptions && segments[1] == keyThemes
	case 3:
		return segments[0] == keyPluginOptions && segments[2] == keyThemes
	}
	return false
}

// coerceOverride turns a raw override string into the value stored at path.
func coerceOverride(path, raw string) any {
	if isListPath(path) {
		return splitList(raw)
	}
	return parseValue(raw)
}

// isValidKeySegment checks if a single path segment is a valid bare key.
func isValidKeySegment(s string) bool {
	if len(s) == 0 {
		return false
	}

	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !(isLetter || isDigit || r == '_' || r == '-') {
			return false
		}
	}
	return true
}
