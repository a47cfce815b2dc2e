// Package util holds small helpers shared by the HTTP controllers.
package util

import (
	"fmt"
	"strconv"
	"time"
)

// timeLayouts are the timestamp shapes the dashboard sends on history queries.
var timeLayouts = []string{time.RFC3339Nano, time.RFC3339}

// ParseTimeFlexible parses an ISO 8601 timestamp or an epoch-milliseconds
// string, always returning UTC.
func ParseTimeFlexible(raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid time format: %s", raw)
}
