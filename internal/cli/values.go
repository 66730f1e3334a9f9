package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseValues turns name=value pairs into field values. "true" and "false"
// become booleans so checkbox members can be seeded; everything else stays a string.
func ParseValues(pairs []string) (map[string]any, error) {
	values := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid value %q: want name=value", pair)
		}
		if b, err := strconv.ParseBool(value); err == nil && (value == "true" || value == "false") {
			values[name] = b
			continue
		}
		values[name] = value
	}
	return values, nil
}
