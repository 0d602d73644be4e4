package writer

import (
	"fmt"
	"time"
)

// Accepted created_at string layouts. The source may hand back a
// parsed timestamp or an ISO-8601 string depending on the driver;
// both normalize before the month token is derived.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// monthToken derives the MM-YYYY partition token from a created_at
// value.
func monthToken(value interface{}) (string, error) {
	t, err := normalizeTimestamp(value)
	if err != nil {
		return "", err
	}
	return t.Format("01-2006"), nil
}

func normalizeTimestamp(value interface{}) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable created_at value %q", v)
	case nil:
		return time.Time{}, fmt.Errorf("missing created_at value")
	default:
		return time.Time{}, fmt.Errorf("unsupported created_at type %T", value)
	}
}

// formatValue renders a cell value for CSV output.
func formatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(v)
	}
}
