package provider

import (
	"context"
	"errors"
	"fmt"
)

// Assertion is a provider-validated identity.
type Assertion struct {
	// ProviderUserID is the provider's stable id for the user. It may be empty
	// when the provider answered with an unusable profile.
	ProviderUserID string
	Profile        map[string]any
}

// Connector runs the authorization-code flow against one provider.
type Connector interface {
	Kind() Kind
	// AuthCodeURL builds the provider redirect. verifier is the PKCE code
	// verifier whose S256 challenge goes into the URL.
	AuthCodeURL(state, verifier string) string
	// Exchange trades the code for a token and fetches the user profile.
	Exchange(ctx context.Context, code, verifier string) (*Assertion, error)
}

// Credentials are the OAuth client settings for one provider.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Scopes       []string
}

var (
	// ErrExchange wraps token endpoint failures.
	ErrExchange = errors.New("provider: code exchange failed")
	// ErrCodeRejected is an ErrExchange where the token endpoint answered
	// 4xx, e.g. invalid_grant for a forged or expired code.
	ErrCodeRejected = fmt.Errorf("%w: code rejected", ErrExchange)
	// ErrProfile wraps user-info failures.
	ErrProfile = errors.New("provider: profile fetch failed")
)
