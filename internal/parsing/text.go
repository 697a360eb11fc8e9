package parsing

import "strings"

// CleanText collapses whitespace runs and strips control characters
// commonly left behind by HTML extraction.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	replacer := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\u00a0", " ")
	text = replacer.Replace(text)
	return strings.Join(strings.Fields(text), " ")
}

// CleanLocation tidies a free-text location string. Remote markers are
// normalized to "Remote"; trailing punctuation and labels are dropped.
func CleanLocation(raw string) string {
	s := CleanText(raw)
	if s == "" {
		return ""
	}

	s = strings.TrimPrefix(s, "Location:")
	s = strings.TrimSpace(strings.Trim(s, " ·|-"))

	lower := strings.ToLower(s)
	if strings.Contains(lower, "remote") || strings.Contains(lower, "work from home") || strings.Contains(lower, "wfh") {
		return "Remote"
	}
	return s
}

// IsRemote reports whether a location string indicates remote work.
func IsRemote(location string) bool {
	return CleanLocation(location) == "Remote"
}

// Truncate shortens s to at most n runes, appending an ellipsis when
// anything was cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "..."
}
