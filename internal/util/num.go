package util

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var numberPattern = regexp.MustCompile(`-?\d{1,3}(?:[\s,]\d{3})+(?:\.\d+)?|-?\d+(?:[.,]\d+)?`)

func ParseNumber(input string) *float64 {
	match := numberPattern.FindString(input)
	if match == "" {
		return nil
	}

	s := strings.ReplaceAll(match, " ", "")
	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		s = strings.ReplaceAll(s, ",", "")
	case strings.Contains(s, ","):
		idx := strings.LastIndex(s, ",")
		if len(s)-idx-1 == 3 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ",", ".")
		}
	}

	parsed, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &parsed
}

func CoerceFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
	case string:
		if parsed := ParseNumber(t); parsed != nil {
			return *parsed
		}
	}
	return 0
}
