package core

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

const dynamicDatePrefix = "$date:"

// dateLayouts names the formats a dynamic date can render to. "stamp" and
// "filestamp" contain no separators that are awkward in file or sheet names.
var dateLayouts = map[string]string{
	"day":       "2006-01-02",
	"month":     "2006-01",
	"year":      "2006",
	"datetime":  "2006-01-02 15:04:05",
	"stamp":     "20060102",
	"filestamp": "20060102-150405",
}

// ParseDynamicDate parses a dynamic date string in the format "$date:format:unit:offset".
// Example: "$date:stamp:day:-1" -> yesterday as "20060102".
// Values without the prefix are returned unchanged.
func ParseDynamicDate(expression string, baseTime time.Time) (string, error) {
	if !strings.HasPrefix(expression, dynamicDatePrefix) {
		return expression, nil
	}

	parts := strings.Split(expression, ":")
	if len(parts) != 4 {
		return "", fmt.Errorf("invalid dynamic date format: %s", expression)
	}
	format, unit := parts[1], parts[2]

	offset, err := strconv.Atoi(parts[3])
	if err != nil {
		return "", fmt.Errorf("invalid offset in dynamic date: %s", expression)
	}

	layout, ok := dateLayouts[format]
	if !ok {
		return "", fmt.Errorf("unsupported format in dynamic date: %s", format)
	}

	switch unit {
	case "day":
		baseTime = baseTime.AddDate(0, 0, offset)
	case "week":
		baseTime = baseTime.AddDate(0, 0, 7*offset)
	case "month":
		baseTime = baseTime.AddDate(0, offset, 0)
	case "year":
		baseTime = baseTime.AddDate(offset, 0, 0)
	default:
		return "", fmt.Errorf("unsupported unit in dynamic date: %s", unit)
	}

	return baseTime.Format(layout), nil
}

// ExpandDynamicParams replaces every "$date:" value in params in place.
// Values that fail to parse are left as they are and logged.
func ExpandDynamicParams(params map[string]string, now time.Time) {
	for k, v := range params {
		if !strings.HasPrefix(v, dynamicDatePrefix) {
			continue
		}
		val, err := ParseDynamicDate(v, now)
		if err != nil {
			slog.Warn("Ignoring dynamic date", "param", k, "error", err)
			continue
		}
		params[k] = val
	}
}
