package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// stringToListHook decodes a string into a []string. A value starting with
// "[" is read as a JSON array, anything else as a comma separated list.
func stringToListHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf([]string{}) {
		return data, nil
	}

	return decodeList(data.(string))
}

func decodeList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}, nil
	}

	if strings.HasPrefix(raw, "[") {
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return nil, fmt.Errorf("invalid JSON list %q: %w", raw, err)
		}
		return list, nil
	}

	parts := strings.Split(raw, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			list = append(list, p)
		}
	}
	return list, nil
}
