// Package session binds an authenticated identity to the client's session.
//
// The Bridge turns a user into a signed token and back. The Manager keeps
// the per-client session record (identity token, pending registration and
// OAuth handshake state) in the cache, keyed by an opaque cookie id.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/hellologin/internal/domain/types"
)

// ErrMalformedToken is returned for tokens this bridge did not produce,
// tampered tokens and expired tokens.
var ErrMalformedToken = errors.New("session: malformed identity token")

const tokenIssuer = "hellologin"

// identityClaims carry the whole user record except the password hash.
type identityClaims struct {
	Email       string   `json:"email,omitempty"`
	FirstName   string   `json:"given_name,omitempty"`
	LastName    string   `json:"family_name,omitempty"`
	Language    string   `json:"lang,omitempty"`
	ExternalIDs []string `json:"ext,omitempty"`
	jwt.RegisteredClaims
}

// Bridge serializes users into HS256 tokens.
type Bridge struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewBridge returns a bridge signing with key. A zero ttl issues tokens
// without expiry; the session record TTL still bounds them.
func NewBridge(key []byte, ttl time.Duration) *Bridge {
	return &Bridge{key: key, ttl: ttl, now: time.Now}
}

// Serialize encodes u.
func (b *Bridge) Serialize(u *types.User) (string, error) {
	if u == nil {
		return "", errors.New("session: nil user")
	}
	now := b.now()
	claims := identityClaims{
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Language:    u.LanguageCode(),
		ExternalIDs: u.ExternalIDs(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   tokenIssuer,
			Subject:  u.ID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if b.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(b.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.key)
	if err != nil {
		return "", fmt.Errorf("session: sign identity: %w", err)
	}
	return signed, nil
}

// Deserialize verifies token and rebuilds the user. Any failure wraps
// ErrMalformedToken.
func (b *Bridge) Deserialize(token string) (*types.User, error) {
	var claims identityClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return b.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(b.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	if claims.Email == "" && len(claims.ExternalIDs) == 0 {
		return nil, fmt.Errorf("%w: token has no identity", ErrMalformedToken)
	}

	return types.NewUser(types.UserData{
		ID:          claims.Subject,
		Email:       claims.Email,
		FirstName:   claims.FirstName,
		LastName:    claims.LastName,
		Language:    claims.Language,
		ExternalIDs: claims.ExternalIDs,
	}), nil
}
