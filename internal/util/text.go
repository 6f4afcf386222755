package util

import (
	"regexp"
	"strings"
)

var (
	reNonAllowed = regexp.MustCompile(`[^A-Z0-9 ]`)
	reSpaces     = regexp.MustCompile(`\s+`)
)

func NormalizeText(input string) string {
	s := strings.ToUpper(input)
	s = reNonAllowed.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func NormalizeCode(input string) string {
	s := strings.ToUpper(input)
	out := strings.Builder{}
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			out.WriteRune(r)
		}
	}
	return out.String()
}

func Tokenize(input string) []string {
	norm := NormalizeText(input)
	if norm == "" {
		return nil
	}
	parts := strings.Split(norm, " ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) >= 2 {
			out = append(out, p)
		}
	}
	return out
}

func LooksLikeCode(input string) bool {
	trimmed := strings.TrimSpace(input)
	if len(trimmed) < 3 {
		return false
	}
	hasLetter := false
	hasDigit := false
	for _, r := range trimmed {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			hasLetter = true
		}
		if r >= '0' && r <= '9' {
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

func StringPtr(v string) *string { return &v }
