package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reNotWordChars    = regexp.MustCompile(`[^a-z0-9_]+`)
	reTrimUnderscores = regexp.MustCompile(`_+`)
)

func trimAndLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func collapseUnderscores(s string) string {
	s = reTrimUnderscores.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// SanitizeID trims and lowercases an ObjectID hex string.
func SanitizeID(id string) string {
	return trimAndLower(id)
}

// SanitizePaymentMethod maps "Credit Card" and "credit-card" to "credit_card".
func SanitizePaymentMethod(method string) string {
	p := Pipeline{
		trimAndLower,
		func(s string) string { return reNotWordChars.ReplaceAllString(s, "_") },
		collapseUnderscores,
	}
	return p.Apply(method)
}

func SanitizeTimestamp(ts string) string {
	return strings.TrimSpace(ts)
}

func SanitizeSlice(values []string, strategy Strategy) []string {
	seen := make(map[string]struct{})
	out := []string{}

	for _, v := range values {
		s := strategy(v)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// SanitizeCSV splits a comma separated query value into distinct,
// lowercased entries.
func SanitizeCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return []string{}
	}
	return SanitizeSlice(strings.Split(value, ","), trimAndLower)
}
