package logging

import "strconv"

// MaxLogFieldLength bounds string fields attached to log entries. Output
// captured from the yc CLI can run to many kilobytes.
const MaxLogFieldLength = 1024

// Truncate shortens s for use as a log field value. Strings within the
// limit are returned unchanged.
func Truncate(s string) string {
	return TruncateN(s, MaxLogFieldLength)
}

// TruncateN shortens s to at most n bytes plus an ellipsis marker.
func TruncateN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// TruncateSlice keeps the first maxItems entries and replaces the rest
// with a single "... and N more" summary entry.
func TruncateSlice(items []string, maxItems int) []string {
	if len(items) <= maxItems {
		return items
	}
	out := make([]string, 0, maxItems+1)
	out = append(out, items[:maxItems]...)
	out = append(out, "... and "+strconv.Itoa(len(items)-maxItems)+" more")
	return out
}
