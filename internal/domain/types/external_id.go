package types

import "strings"

const externalIDSep = "://"

// FormatExternalID builds the provider-qualified identifier, e.g.
// FormatExternalID("twitter", "12345") == "twitter://12345".
func FormatExternalID(provider, providerUserID string) string {
	return provider + externalIDSep + providerUserID
}

// ParseExternalID splits an identifier built by FormatExternalID.
func ParseExternalID(s string) (provider, providerUserID string, ok bool) {
	provider, providerUserID, ok = strings.Cut(s, externalIDSep)
	if !ok || provider == "" || providerUserID == "" {
		return "", "", false
	}
	return provider, providerUserID, true
}
