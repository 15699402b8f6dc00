package outreach

import (
	"regexp"
	"strings"
)

var addressRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Generic local-parts that never reach a decision maker.
var genericPrefixes = []string{
	"hr@", "support@", "info@", "admin@", "noreply@", "no-reply@",
	"contact@", "sales@", "marketing@", "help@", "service@",
	"office@", "reception@", "general@", "customer@", "team@",
	"mail@", "enquiry@", "inquiry@", "hello@", "web@",
}

// Terms anywhere in the local-part that mark machine or bounce addresses.
var excludedTerms = []string{
	"noreply", "no-reply", "donotreply", "do-not-reply",
	"postmaster", "mailer-daemon", "bounce",
}

// Patterns that suggest a decision-maker mailbox, in preference order.
var preferredPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[a-zA-Z]+\.[a-zA-Z]+@`),                   // firstname.lastname@
	regexp.MustCompile(`^[a-zA-Z]{2,}@`),                           // plain name
	regexp.MustCompile(`^(ceo|cto|cfo|founder|owner|director|manager)[@.]`), // title mailbox
}

// IsValidAddress checks basic syntactic shape.
func IsValidAddress(addr string) bool {
	return addressRe.MatchString(addr)
}

// IsBusinessAddress reports whether an address is worth sending outreach to:
// syntactically valid and neither generic nor a bounce/machine mailbox.
func IsBusinessAddress(addr string) bool {
	if addr == "" || !IsValidAddress(addr) {
		return false
	}

	lower := strings.ToLower(addr)
	for _, prefix := range genericPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return false
		}
	}

	local := strings.SplitN(lower, "@", 2)[0]
	for _, term := range excludedTerms {
		if strings.Contains(local, term) {
			return false
		}
	}
	return true
}

// ExtractBestEmail picks the single authoritative address out of a raw
// email field that may hold several comma- or semicolon-separated
// candidates. Decision-maker-looking addresses win; otherwise the first
// valid business address does. Returns "" when nothing qualifies.
func ExtractBestEmail(field string) string {
	field = strings.TrimSpace(field)
	if field == "" {
		return ""
	}

	var valid []string
	for _, candidate := range strings.FieldsFunc(field, func(r rune) bool {
		return r == ',' || r == ';'
	}) {
		candidate = strings.TrimSpace(candidate)
		if IsBusinessAddress(candidate) {
			valid = append(valid, candidate)
		}
	}
	if len(valid) == 0 {
		return ""
	}

	for _, pattern := range preferredPatterns {
		for _, addr := range valid {
			if pattern.MatchString(strings.ToLower(addr)) {
				return addr
			}
		}
	}
	return valid[0]
}
