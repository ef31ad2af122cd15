package locator

import (
	"fmt"
	"regexp"
	"strings"

	"flow_navigator/domain/entities"
)

// minTextLen is the shortest cleaned text used in a text selector
const minTextLen = 2

var (
	// leading counters, prices and bullets change between renders
	unstablePrefix = regexp.MustCompile(`^[\d\p{Sc}\s\-–.,:#*+]+`)
	invalidCSSID   = regexp.MustCompile(`[:\s]`)
)

var (
	canonicalTags = map[string]bool{"button": true, "a": true, "label": true}
	containerTags = map[string]bool{"span": true, "p": true, "div": true}
)

// Synthesize - returns candidate selectors for an element, most robust first.
// Test hooks beat accessibility hooks, which beat structural identity and
// semantic attributes; visible text comes last.
func Synthesize(el entities.ElementRecord) []string {
	var candidates []string
	attrs := el.Attrs

	if v := attrs["data-testid"]; v != "" {
		candidates = append(candidates, fmt.Sprintf("[data-testid='%s']", escapeQuotes(v)))
	}
	if v := attrs["aria-label"]; v != "" {
		candidates = append(candidates, fmt.Sprintf("[aria-label='%s']", escapeQuotes(v)))
	}
	if el.ID != "" && IsValidCSSID(el.ID) {
		candidates = append(candidates, "#"+el.ID)
	}
	if el.Name != "" {
		candidates = append(candidates, fmt.Sprintf("[name='%s']", escapeQuotes(el.Name)))
	}

	text := strings.TrimSpace(el.Text)
	tag := el.Tag
	if tag != "" && text != "" {
		cleaned := CleanText(text)
		if len([]rune(cleaned)) >= minTextLen {
			escaped := escapeQuotes(cleaned)
			hasText := fmt.Sprintf("%s:has-text('%s')", tag, escaped)

			if canonicalTags[tag] {
				candidates = append(candidates, hasText)
			} else if containerTags[tag] && len(candidates) == 0 {
				candidates = append(candidates, hasText)
			}
			candidates = append(candidates, hasText)
			if el.Type != "" {
				candidates = append(candidates,
					fmt.Sprintf("%s[type='%s']:has-text('%s')", tag, escapeQuotes(el.Type), escaped))
			}
		}
	}

	if len(candidates) == 0 && text != "" {
		candidates = append(candidates,
			fmt.Sprintf("//%s[contains(normalize-space(text()), %s)]", tag, xpathLiteral(text)))
	}

	return dedupe(candidates)
}

// IsValidCSSID - reports whether id can be used in a #id selector
func IsValidCSSID(id string) bool {
	return !invalidCSSID.MatchString(id)
}

// CleanText - strips leading numeric, currency and punctuation noise
func CleanText(text string) string {
	return strings.TrimSpace(unstablePrefix.ReplaceAllString(text, ""))
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}

// xpathLiteral - quotes s for XPath 1.0, which has no escape sequences
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	for i, p := range parts {
		parts[i] = "'" + p + "'"
	}
	return "concat(" + strings.Join(parts, `, "'", `) + ")"
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
