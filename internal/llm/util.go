package llm

import "strings"

// StripCodeFence removes a markdown code fence wrapping the whole response.
// Models sometimes fence plain text even when asked not to.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") || len(text) < 6 {
		return text
	}

	inner := strings.TrimPrefix(text, "```")
	inner = strings.TrimSuffix(inner, "```")

	// Skip a language identifier on the opening line
	if idx := strings.Index(inner, "\n"); idx >= 0 {
		firstLine := inner[:idx]
		if len(firstLine) < 20 && !strings.Contains(firstLine, " ") {
			inner = inner[idx+1:]
		}
	}
	return strings.TrimSpace(inner)
}
