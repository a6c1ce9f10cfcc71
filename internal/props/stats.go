package props

import (
	"strconv"
	"strings"

	"github.com/oddsline/settlement-api/internal/types"
)

// TeamStats holds per-team statistic values keyed both by a normalized
// name (lower-cased, spaces to underscores) and by the provider's
// original label. Provider payload shapes disagree on key conventions,
// so lookups try the normalized key first and fall back to the literal
// label when the normalized value is zero.
type TeamStats struct {
	Home map[string]int
	Away map[string]int
}

// BuildStats maps raw statistic lines into the dual-keyed lookup table.
func BuildStats(lines []types.StatLine) TeamStats {
	stats := TeamStats{
		Home: make(map[string]int),
		Away: make(map[string]int),
	}

	for _, line := range lines {
		normalized := strings.ReplaceAll(strings.ToLower(line.Name), " ", "_")
		home := parseStatValue(line.Home)
		away := parseStatValue(line.Away)

		stats.Home[normalized] = home
		stats.Away[normalized] = away
		stats.Home[line.Name] = home
		stats.Away[line.Name] = away
	}

	return stats
}

// lookup reads a statistic for both teams, trying the normalized key and
// falling back per side to the provider's literal label when the value
// is zero. The fallback order is load-bearing: collapsing it reads zero
// where a valid non-normalized key exists.
func (s TeamStats) lookup(normalized, literal string) (home, away int) {
	home = s.Home[normalized]
	away = s.Away[normalized]
	if home == 0 {
		home = s.Home[literal]
	}
	if away == 0 {
		away = s.Away[literal]
	}
	return home, away
}

// parseStatValue parses a raw statistic string leniently: blank values
// are zero, fractional values truncate, garbage is zero. Statistics are
// advisory and must never fail a settlement.
func parseStatValue(value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return int(f)
	}
	return 0
}
