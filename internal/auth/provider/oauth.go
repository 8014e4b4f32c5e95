package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// Twitter OAuth 2.0 (PKCE) endpoints.
var twitterEndpoint = oauth2.Endpoint{
	AuthURL:   "https://twitter.com/i/oauth2/authorize",
	TokenURL:  "https://api.twitter.com/2/oauth2/token",
	AuthStyle: oauth2.AuthStyleInHeader,
}

const (
	googleUserInfoURL   = "https://openidconnect.googleapis.com/v1/userinfo"
	twitterUserInfoURL  = "https://api.twitter.com/2/users/me"
	facebookUserInfoURL = "https://graph.facebook.com/me?fields=id,name,email,first_name,last_name"

	maxProfileBytes = 1 << 20
)

// Options overrides endpoints and the HTTP client. Zero values use the
// provider defaults.
type Options struct {
	Endpoint    oauth2.Endpoint
	UserInfoURL string
	HTTPClient  *http.Client
}

type oauthConnector struct {
	kind        Kind
	cfg         *oauth2.Config
	userInfoURL string
	client      *http.Client
	// extract pulls the user id and profile out of the user-info payload.
	extract func(payload map[string]any) (string, map[string]any)
}

// New returns the connector for kind with the callback redirectURL.
func New(kind Kind, creds Credentials, redirectURL string, opts Options) (Connector, error) {
	c := &oauthConnector{
		kind:   kind,
		client: opts.HTTPClient,
		cfg: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  redirectURL,
			Scopes:       creds.Scopes,
		},
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: 10 * time.Second}
	}

	switch kind {
	case Google:
		c.cfg.Endpoint = endpoints.Google
		c.userInfoURL = googleUserInfoURL
		c.extract = flatProfile("sub")
	case Twitter:
		c.cfg.Endpoint = twitterEndpoint
		c.userInfoURL = twitterUserInfoURL
		c.extract = twitterProfile
	case Facebook:
		c.cfg.Endpoint = endpoints.Facebook
		c.userInfoURL = facebookUserInfoURL
		c.extract = flatProfile("id")
	default:
		return nil, fmt.Errorf("provider: unknown kind %q", kind)
	}

	if opts.Endpoint.TokenURL != "" {
		c.cfg.Endpoint = opts.Endpoint
	}
	if opts.UserInfoURL != "" {
		c.userInfoURL = opts.UserInfoURL
	}
	return c, nil
}

func (c *oauthConnector) Kind() Kind { return c.kind }

func (c *oauthConnector) AuthCodeURL(state, verifier string) string {
	return c.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier))
}

func (c *oauthConnector) Exchange(ctx context.Context, code, verifier string) (*Assertion, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.client)

	tok, err := c.cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil &&
			re.Response.StatusCode >= 400 && re.Response.StatusCode < 500 {
			return nil, fmt.Errorf("%w: %s: %w", ErrCodeRejected, c.kind, err)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrExchange, c.kind, err)
	}

	payload, err := c.fetchProfile(ctx, tok)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrProfile, c.kind, err)
	}

	id, profile := c.extract(payload)
	return &Assertion{ProviderUserID: id, Profile: profile}, nil
}

func (c *oauthConnector) fetchProfile(ctx context.Context, tok *oauth2.Token) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.cfg.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxProfileBytes))
		return nil, fmt.Errorf("user-info status %d", resp.StatusCode)
	}

	var payload map[string]any
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxProfileBytes))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode user-info: %w", err)
	}
	return payload, nil
}

func flatProfile(idField string) func(map[string]any) (string, map[string]any) {
	return func(p map[string]any) (string, map[string]any) {
		return stringValue(p[idField]), p
	}
}

// twitterProfile unwraps {"data": {...}}.
func twitterProfile(p map[string]any) (string, map[string]any) {
	data, _ := p["data"].(map[string]any)
	if data == nil {
		return "", p
	}
	return stringValue(data["id"]), data
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}
