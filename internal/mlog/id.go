package mlog

import "strings"

// FormatID abbreviates a message or instance ID for logging.
//
// UUIDs are shown as their first block only; any other ID is shown in full.
func FormatID(id string) string {
	if len(id) == 36 && strings.Count(id, "-") == 4 {
		return id[:strings.IndexByte(id, '-')]
	}

	return id
}
