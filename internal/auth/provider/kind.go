// Package provider wraps the OAuth 2.0 handshake with each identity provider
// and turns the result into an Assertion: the provider's user id plus the raw
// profile it returned.
package provider

// Kind names a supported identity provider.
type Kind string

const (
	Google   Kind = "google"
	Twitter  Kind = "twitter"
	Facebook Kind = "facebook"
)

// Kinds lists every supported provider in a stable order.
func Kinds() []Kind { return []Kind{Google, Twitter, Facebook} }

// ParseKind maps a URL slug to a Kind.
func ParseKind(slug string) (Kind, bool) {
	switch Kind(slug) {
	case Google, Twitter, Facebook:
		return Kind(slug), true
	}
	return "", false
}

// Slug is the lowercase name used in URLs and external identifiers.
func (k Kind) Slug() string { return string(k) }

// Title is the display name, used in the ?fail= redirect annotation.
func (k Kind) Title() string {
	switch k {
	case Google:
		return "Google"
	case Twitter:
		return "Twitter"
	case Facebook:
		return "Facebook"
	}
	return string(k)
}
