package importer

import (
	"math"
	"strconv"
	"strings"
)

// parseNumber accepts "1.5" and, when no dot is present, "1,5".
func parseNumber(raw string) (float64, bool) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return math.NaN(), false
	}
	if strings.Contains(cleaned, ",") && !strings.Contains(cleaned, ".") {
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return math.NaN(), false
	}
	return value, true
}

func allNumeric(fields []string) bool {
	if len(fields) == 0 {
		return false
	}
	for _, field := range fields {
		if _, ok := parseNumber(field); !ok {
			return false
		}
	}
	return true
}

func normalizeHeader(input string) string {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	trimmed = strings.ReplaceAll(trimmed, "_", "")
	trimmed = strings.ReplaceAll(trimmed, "-", "")
	trimmed = strings.ReplaceAll(trimmed, " ", "")
	return trimmed
}
