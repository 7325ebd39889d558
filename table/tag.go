package table

import (
	"fmt"
	"strconv"
	"strings"
)

// parseEntryID reads the `id=N` component of an Entry field's `nop` struct
// tag. Every table field must declare one; ids are permanent (spec §4.5).
func parseEntryID(raw string) (uint64, error) {
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if after, ok := strings.CutPrefix(part, "id="); ok {
			id, err := strconv.ParseUint(strings.TrimSpace(after), 10, 64)
			if err != nil {
				return 0, fmt.Errorf("table: invalid id tag %q: %w", raw, err)
			}
			return id, nil
		}
	}
	return 0, fmt.Errorf("table: field missing required `nop:\"id=N\"` tag")
}
