package extract

import (
	"strconv"
	"strings"
)

// parseNumber parses a numeric token tolerating thousands separators and
// both decimal conventions: "6,120", "1,696.92", "1.696,92", "6 120",
// "6'120.5".
func parseNumber(token string) (float64, bool) {
	s := strings.TrimSpace(token)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "'", "")
	if s == "" {
		return 0, false
	}

	lastComma := strings.LastIndexByte(s, ',')
	lastDot := strings.LastIndexByte(s, '.')

	switch {
	case lastComma >= 0 && lastDot >= 0:
		// The later separator is the decimal mark, the other groups thousands.
		if lastDot > lastComma {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 || len(s)-lastComma-1 == 3 {
			// "1,696" or "1,234,567": grouping.
			s = strings.ReplaceAll(s, ",", "")
		} else {
			// "1696,92": decimal comma.
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
