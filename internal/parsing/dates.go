package parsing

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateFormats are the absolute formats tried in order when parsing
// listing dates.
var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01-02 15:04:05",
	"01/02/2006 15:04:05",
	time.RFC3339,
}

var daysAgoRe = regexp.MustCompile(`(\d+)`)

// ParseDate parses the date formats commonly seen on listing pages,
// including relative forms like "today", "yesterday" and "3 days ago".
// It returns the zero time and false when nothing matches; callers
// treat that as an unknown date, never as an error.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}

	now := time.Now()
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "today"), strings.Contains(lower, "just now"):
		return now, true
	case strings.Contains(lower, "yesterday"):
		return now.AddDate(0, 0, -1), true
	case strings.Contains(lower, "day"):
		if m := daysAgoRe.FindString(lower); m != "" {
			days, err := strconv.Atoi(m)
			if err == nil {
				return now.AddDate(0, 0, -days), true
			}
		}
	case strings.Contains(lower, "hour"), strings.Contains(lower, "minute"):
		return now, true
	case strings.Contains(lower, "week"):
		if m := daysAgoRe.FindString(lower); m != "" {
			weeks, err := strconv.Atoi(m)
			if err == nil {
				return now.AddDate(0, 0, -7*weeks), true
			}
		}
	}

	return time.Time{}, false
}
