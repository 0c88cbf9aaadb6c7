package smtp

import (
	"regexp"
	"strings"
)

var commands = map[string]struct{}{
	"HELO": {}, "EHLO": {}, "MAIL": {}, "RCPT": {}, "DATA": {}, "BDAT": {},
	"QUIT": {}, "RSET": {}, "NOOP": {}, "VRFY": {}, "EXPN": {}, "AUTH": {},
	"STARTTLS": {}, "XFORWARD": {},
}

var commandPhrases = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^>>> ([A-Z]{4,8})\b`),
	regexp.MustCompile(`(?i)\bin reply to (?:end of )?([A-Z]{4,8})\b`),
	regexp.MustCompile(`(?i)\bafter (?:end of )?([A-Z]{4,8})\b`),
	regexp.MustCompile(`(?i)\bend of (DATA)\b`),
	regexp.MustCompile(`(?i)\bin (MAIL) FROM\b`),
	regexp.MustCompile(`(?i)\bin (RCPT) TO\b`),
}

// IsCommand reports whether s is a known SMTP verb.
func IsCommand(s string) bool {
	_, ok := commands[strings.ToUpper(s)]
	return ok
}

// FindCommand extracts the SMTP verb a transcript line refers to, e.g.
// ">>> RCPT TO:<a@b>" or "in reply to end of DATA command".
func FindCommand(line string) string {
	return MatchCommand(line, commandPhrases)
}

// MatchCommand applies patterns in order and returns the first captured verb
// that is a known SMTP command.
func MatchCommand(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		if verb := strings.ToUpper(m[1]); IsCommand(verb) {
			return verb
		}
	}
	return ""
}
