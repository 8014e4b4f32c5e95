// Package validation holds the syntactic checks applied to user input and
// configuration.
package validation

import (
	"net/mail"
	"regexp"
	"strings"
)

// Scope names are lowercase, start and end with [a-z0-9], may contain
// [a-z0-9:_.-] in between and are at most 64 chars.
var scopeNameRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9:_\.-]{0,62}[a-z0-9])?$`)

// ValidScopeName reports whether name is an acceptable OAuth scope.
func ValidScopeName(name string) bool {
	return scopeNameRe.MatchString(name)
}

// ValidEmail accepts a bare address (no display name) of at most 254 chars
// with a dotted domain.
func ValidEmail(s string) bool {
	if len(s) == 0 || len(s) > 254 || strings.TrimSpace(s) != s {
		return false
	}
	a, err := mail.ParseAddress(s)
	if err != nil || a.Address != s || a.Name != "" {
		return false
	}
	_, domain, _ := strings.Cut(s, "@")
	return strings.Contains(domain, ".") && !strings.HasSuffix(domain, ".")
}
