package smtp

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vibast-solutions/ms-go-bounces/app/entity"
)

var statusPattern = regexp.MustCompile(`[245]\.[0-9]{1,3}\.[0-9]{1,3}`)

// pseudoDetail holds the detail digits of the internal status code for each reason.
// The class digit is chosen at lookup time and the subject is always 0.
var pseudoDetail = map[entity.Reason]int{
	entity.ReasonNoRelaying:    909,
	entity.ReasonOnHold:        901,
	entity.ReasonSyntaxError:   902,
	entity.ReasonUserUnknown:   911,
	entity.ReasonHostUnknown:   912,
	entity.ReasonHasMoved:      916,
	entity.ReasonRejected:      918,
	entity.ReasonSuspend:       921,
	entity.ReasonMailboxFull:   922,
	entity.ReasonExceedLimit:   923,
	entity.ReasonFiltered:      924,
	entity.ReasonSystemError:   930,
	entity.ReasonSystemFull:    931,
	entity.ReasonNotAccept:     932,
	entity.ReasonMesgTooBig:    934,
	entity.ReasonMailerError:   939,
	entity.ReasonNetworkError:  944,
	entity.ReasonTooManyConn:   945,
	entity.ReasonExpired:       947,
	entity.ReasonContentError:  960,
	entity.ReasonSecurityError: 970,
	entity.ReasonBlocked:       971,
	entity.ReasonSpamDetected:  980,
	entity.ReasonUnknown:       900,
}

// IsStatus reports whether s is a well formed enhanced status code.
func IsStatus(s string) bool {
	return s != "" && statusPattern.FindString(s) == s
}

// IsPlaceholder reports whether s is a generic x.0.0 code that carries no detail.
func IsPlaceholder(s string) bool {
	return IsStatus(s) && strings.HasSuffix(s, ".0.0")
}

// IsPseudo reports whether s is an internal code produced by Code.
func IsPseudo(s string) bool {
	return IsStatus(s) && len(s) == 7 && strings.HasPrefix(s[1:], ".0.9")
}

// FindStatus returns the first enhanced status code embedded in text. A code with
// detail wins over an x.0.0 placeholder appearing earlier.
func FindStatus(text string) string {
	var placeholder string
	for _, loc := range statusPattern.FindAllStringIndex(text, -1) {
		if !standalone(text, loc[0], loc[1]) {
			continue
		}
		code := text[loc[0]:loc[1]]
		if !IsPlaceholder(code) {
			return code
		}
		if placeholder == "" {
			placeholder = code
		}
	}
	return placeholder
}

// Code returns the internal pseudo status code for a reason.
func Code(reason entity.Reason, temporary bool) string {
	detail, ok := pseudoDetail[reason]
	if !ok {
		detail = pseudoDetail[entity.ReasonUnknown]
	}
	class := 5
	if temporary {
		class = 4
	}
	return fmt.Sprintf("%d.0.%d", class, detail)
}

// Class returns the leading digit of a status or reply code, or 0 when absent.
func Class(code string) int {
	if code == "" {
		return 0
	}
	switch code[0] {
	case '2':
		return 2
	case '4':
		return 4
	case '5':
		return 5
	}
	return 0
}

// standalone rejects matches glued to digits or dots, such as parts of IP addresses.
func standalone(text string, start, end int) bool {
	if start > 0 {
		if c := text[start-1]; isDigit(c) || c == '.' {
			return false
		}
	}
	if end < len(text) {
		if c := text[end]; isDigit(c) || c == '.' {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
