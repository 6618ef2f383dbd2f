package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/blogadmin/internal/connector"
)

// FormatHeader returns a markdown header of the given level.
func FormatHeader(level int, text string) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue returns a markdown list item "- **key**: value".
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("- **%s**: %s", key, value)
}

// FormatValue renders a record value as a single cell.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case map[string]any:
		if label, ok := val["name"]; ok {
			return FormatValue(label)
		}
		if id, ok := val["id"]; ok {
			return FormatValue(id)
		}
		return fmt.Sprintf("%v", val)
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = FormatValue(item)
		}
		return strings.Join(parts, ", ")
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Columns returns the union of the records' keys with "id" first. Keys new to
// a record are appended in sorted order.
func Columns(records []connector.Record) []string {
	seen := map[string]bool{}
	var cols []string
	for _, rec := range records {
		keys := make([]string, 0, len(rec))
		for key := range rec {
			if !seen[key] {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		for _, key := range keys {
			seen[key] = true
			cols = append(cols, key)
		}
	}
	for i, col := range cols {
		if col == "id" && i > 0 {
			copy(cols[1:i+1], cols[:i])
			cols[0] = "id"
			break
		}
	}
	return cols
}
