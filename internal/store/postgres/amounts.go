package postgres

import (
	"fmt"
	"strconv"
	"strings"
)

// Amounts are stored as NUMERIC(20,0) so the full uint64 range round-trips
// without driver-side overflow.

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func parseUint(s string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}
