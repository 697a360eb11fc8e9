package email

import (
	"fmt"
	"html"
	"strings"

	"github.com/nexora/opportunity-agent/internal/types"
)

// renderDigest builds the HTML body of a digest email.
func renderDigest(name string, ranked *types.RankedMatches) string {
	if name == "" {
		name = "there"
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><body style=\"font-family: sans-serif; max-width: 600px; margin: 0 auto;\">")
	fmt.Fprintf(&b, "<h2>Hi %s,</h2>", html.EscapeString(name))
	b.WriteString("<p>Here are your latest opportunity matches.</p>")

	b.WriteString("<h3>Best Matches</h3>")
	writeSection(&b, ranked.BestMatches, "No standout matches this time. Check back soon!")

	if len(ranked.OtherSuggestions) > 0 {
		b.WriteString("<h3>Other Suggestions</h3>")
		writeSection(&b, ranked.OtherSuggestions, "")
	}

	b.WriteString("<p style=\"color: #666; font-size: 12px;\">You receive this digest because email notifications are enabled in your preferences.</p>")
	b.WriteString("</body></html>")
	return b.String()
}

func writeSection(b *strings.Builder, matches []types.MatchResult, emptyMessage string) {
	if len(matches) == 0 {
		if emptyMessage != "" {
			fmt.Fprintf(b, "<p style=\"color: #666;\">%s</p>", html.EscapeString(emptyMessage))
		}
		return
	}

	for _, m := range matches {
		opp := m.Opportunity
		fmt.Fprintf(b, "<div style=\"border: 1px solid #ddd; border-radius: 6px; padding: 12px; margin: 8px 0;\">")
		if opp.URL != "" {
			fmt.Fprintf(b, "<strong><a href=\"%s\">%s</a></strong>", html.EscapeString(opp.URL), html.EscapeString(opp.Title))
		} else {
			fmt.Fprintf(b, "<strong>%s</strong>", html.EscapeString(opp.Title))
		}
		fmt.Fprintf(b, " at %s", html.EscapeString(opp.Company))
		fmt.Fprintf(b, "<div style=\"color: #666; font-size: 13px;\">%s &middot; match score %.0f%%</div>", html.EscapeString(string(opp.Type)), m.Score*100)
		if m.Reasoning != "" {
			fmt.Fprintf(b, "<p style=\"font-size: 13px;\">%s</p>", html.EscapeString(m.Reasoning))
		}
		b.WriteString("</div>")
	}
}
