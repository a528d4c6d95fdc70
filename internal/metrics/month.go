package metrics

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MonthUnspecified is the sentinel month assigned when neither the record nor
// the batch resolves a period. Using an explicit token keeps such rows visible
// in groupings instead of silently vanishing behind a null.
const MonthUnspecified = "unspecified"

var (
	// Year 2000–2099, optional separator (-, /, ., or 年), 1–2 digit month,
	// optional trailing 月. Matches "2025-7", "2025/07", "2025.7", "2025年7月".
	monthFullRe = regexp.MustCompile(`(20[0-9]{2})[-/.年]?([0-9]{1,2})月?`)
	// Bare month with the 月 glyph, e.g. "7月"; the current year is assumed.
	monthBareRe = regexp.MustCompile(`^([0-9]{1,2})月`)
	// Already-canonical YYYY-M or YYYY-MM for re-padding at display time.
	monthCanonRe = regexp.MustCompile(`^([0-9]{4})-([0-9]{1,2})$`)
)

// NormalizeMonth parses a heterogeneous month expression into a canonical
// "YYYY-MM" token. The second return is false when nothing matched; callers
// must then supply a fallback or mark the row unspecified.
func NormalizeMonth(raw string) (string, bool) {
	return normalizeMonthIn(raw, time.Now().Year())
}

func normalizeMonthIn(raw string, currentYear int) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if m := monthFullRe.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 {
			return fmt.Sprintf("%04d-%02d", year, month), true
		}
	}
	if m := monthBareRe.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		if month >= 1 && month <= 12 {
			return fmt.Sprintf("%04d-%02d", currentYear, month), true
		}
	}
	return "", false
}

// RepadMonth re-pads a single-digit month surviving from manual entry
// ("2025-7" -> "2025-07"). It is idempotent on already-correct input and
// returns anything else, including the unspecified sentinel, unchanged.
func RepadMonth(raw string) string {
	s := strings.TrimSpace(raw)
	if m := monthCanonRe.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%s-%02d", m[1], month)
	}
	return s
}
