package itinerary

import (
	"regexp"
	"strings"
)

// extractPatterns are tried in order; the first one with a non-empty capture wins.
var extractPatterns = []*regexp.Regexp{
	regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```"),
	regexp.MustCompile("```\\s*([\\s\\S]*?)\\s*```"),
	regexp.MustCompile(`(\{[\s\S]*\})`),
}

// Extract locates the JSON payload inside raw model output: a ```json fence, any
// fence, or the widest {...} span. Without a match the whole text is returned.
func Extract(raw string) string {
	for _, re := range extractPatterns {
		m := re.FindStringSubmatch(raw)
		if len(m) > 1 && m[1] != "" {
			return strings.TrimSpace(m[1])
		}
	}
	return strings.TrimSpace(raw)
}
