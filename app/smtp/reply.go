package smtp

import (
	"regexp"
	"strings"
)

var replyPattern = regexp.MustCompile(`[45][0-5][0-9]`)

// IsReply reports whether s is a 4xx or 5xx SMTP reply code.
func IsReply(s string) bool {
	return len(s) == 3 && replyPattern.MatchString(s)
}

// FindReply returns the first 4xx or 5xx reply code standing alone in text.
func FindReply(text string) string {
	if len(text) < 3 || strings.Contains(strings.ToUpper(text), "X-UNIX") {
		return ""
	}
	for _, loc := range replyPattern.FindAllStringIndex(text, -1) {
		if standalone(text, loc[0], loc[1]) {
			return text[loc[0]:loc[1]]
		}
	}
	return ""
}
