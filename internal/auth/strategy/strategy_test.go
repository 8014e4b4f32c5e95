package strategy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellologin/internal/auth/provider"
	"github.com/dropDatabas3/hellologin/internal/domain/repository"
	"github.com/dropDatabas3/hellologin/internal/domain/types"
	"github.com/dropDatabas3/hellologin/internal/security/password"
	"github.com/dropDatabas3/hellologin/internal/store/adapters/memory"
)

var fastParams = password.Params{Memory: 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32}

func seedUsers(t *testing.T) *memory.Users {
	t.Helper()
	users := memory.New()
	hash, err := password.Hash(fastParams, "correct horse")
	require.NoError(t, err)

	_, err = users.Create(context.Background(), repository.CreateUserInput{
		Email: "ada@example.com", PasswordHash: hash, FirstName: "Ada",
	})
	require.NoError(t, err)
	_, err = users.Create(context.Background(), repository.CreateUserInput{
		Email: "social@example.com", ExternalIDs: []string{"twitter://42"},
	})
	require.NoError(t, err)
	return users
}

func TestLocal_SucceedsOnlyWithMatchingPassword(t *testing.T) {
	s := NewLocal(seedUsers(t))
	ctx := context.Background()

	out := s.Resolve(ctx, Credentials{Email: "ADA@example.com", Password: "correct horse"})
	require.True(t, out.IsAuthenticated())
	require.Equal(t, "Ada", out.User().DisplayName())

	cases := []Credentials{
		{Email: "ada@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "correct horse"},
		{Email: "social@example.com", Password: "anything"}, // no local hash
		{Email: "", Password: "correct horse"},
		{Email: "ada@example.com", Password: ""},
	}
	for _, c := range cases {
		out := s.Resolve(ctx, c)
		require.True(t, out.IsRejected(), "%+v", c)
		require.Equal(t, ReasonInvalidCredentials, out.Reason())
		require.Nil(t, out.Pending())
	}
}

func TestLocal_NegativesRunTheVerifier(t *testing.T) {
	s := NewLocal(seedUsers(t))
	var hashes []string
	s.verify = func(plain, stored string) bool {
		hashes = append(hashes, stored)
		return password.Verify(plain, stored)
	}
	ctx := context.Background()

	for _, email := range []string{"nobody@example.com", "social@example.com", "ada@example.com"} {
		hashes = nil
		out := s.Resolve(ctx, Credentials{Email: email, Password: "wrong"})
		require.True(t, out.IsRejected(), email)
		require.Len(t, hashes, 1, email)
		require.NotEmpty(t, hashes[0], email)
	}

	hashes = nil
	s.Resolve(ctx, Credentials{Email: "nobody@example.com", Password: "wrong"})
	s.Resolve(ctx, Credentials{Email: "social@example.com", Password: "wrong"})
	require.Equal(t, hashes[0], hashes[1])
	require.Contains(t, hashes[0], "$argon2id$")
}

type failingRepo struct{ err error }

func (r failingRepo) GetByEmail(context.Context, string) (*types.User, error) { return nil, r.err }
func (r failingRepo) GetByExternalID(context.Context, string) (*types.User, error) {
	return nil, r.err
}
func (r failingRepo) Create(context.Context, repository.CreateUserInput) (*types.User, error) {
	return nil, r.err
}

func TestLocal_StoreFaultIsFault(t *testing.T) {
	boom := errors.New("connection refused")
	out := NewLocal(failingRepo{err: boom}).Resolve(context.Background(), Credentials{Email: "a@b.com", Password: "x"})
	require.True(t, out.IsFault())
	require.ErrorIs(t, out.Err(), boom)
}

func TestExternal_KnownIdentity(t *testing.T) {
	s, err := NewExternal(provider.Twitter, IntentLogin, nil, seedUsers(t), time.Minute)
	require.NoError(t, err)
	require.Equal(t, TwitterLogin, s.Name())

	out := s.Resolve(context.Background(), Credentials{Assertion: &provider.Assertion{ProviderUserID: "42"}})
	require.True(t, out.IsAuthenticated())
	require.Equal(t, "social@example.com", out.User().Email)
}

func TestExternal_UnknownIdentityCapturesPending(t *testing.T) {
	s, err := NewExternal(provider.Twitter, IntentLogin, nil, seedUsers(t), time.Minute)
	require.NoError(t, err)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	profile := map[string]any{"id": "999", "username": "lovelace"}
	out := s.Resolve(context.Background(), Credentials{Assertion: &provider.Assertion{ProviderUserID: "999", Profile: profile}})

	require.True(t, out.IsRejected())
	require.Equal(t, ReasonNotLinked, out.Reason())
	require.Equal(t, &types.PendingRegistration{
		Provider:   "twitter",
		Identifier: "twitter://999",
		Profile:    profile,
		ExpiresAt:  now.Add(time.Minute),
	}, out.Pending())
}

func TestExternal_EmptyIDCapturesNothing(t *testing.T) {
	s, err := NewExternal(provider.Facebook, IntentRegister, nil, seedUsers(t), 0)
	require.NoError(t, err)

	for _, a := range []*provider.Assertion{nil, {ProviderUserID: "", Profile: map[string]any{"name": "x"}}} {
		out := s.Resolve(context.Background(), Credentials{Assertion: a})
		require.True(t, out.IsRejected())
		require.Equal(t, ReasonMalformedAssertion, out.Reason())
		require.Nil(t, out.Pending())
	}
}

func TestExternal_CancelledContextIsFaultWithoutPending(t *testing.T) {
	s, err := NewExternal(provider.Google, IntentLogin, nil, seedUsers(t), 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := s.Resolve(ctx, Credentials{Assertion: &provider.Assertion{ProviderUserID: "unknown"}})
	require.True(t, out.IsFault())
	require.ErrorIs(t, out.Err(), context.Canceled)
	require.Nil(t, out.Pending())
}

func TestNames(t *testing.T) {
	require.Len(t, Names(), 7)
	for _, kind := range provider.Kinds() {
		login, ok := ExternalName(kind, IntentLogin)
		require.True(t, ok)
		register, ok := ExternalName(kind, IntentRegister)
		require.True(t, ok)

		require.Equal(t, IntentLogin, login.Intent())
		require.Equal(t, IntentRegister, register.Intent())
		k, _ := register.Provider()
		require.Equal(t, kind, k)
	}
	require.Equal(t, "twitter-register", TwitterRegister.String())
	require.Equal(t, "/login/twitter/return", CallbackPath(provider.Twitter, IntentLogin))
	require.Equal(t, "/register/google/return", CallbackPath(provider.Google, IntentRegister))
}

type stubConnector struct {
	kind     provider.Kind
	redirect string
}

func (c *stubConnector) Kind() provider.Kind                 { return c.kind }
func (c *stubConnector) AuthCodeURL(state, _ string) string { return c.redirect + "?state=" + state }
func (c *stubConnector) Exchange(context.Context, string, string) (*provider.Assertion, error) {
	return nil, errors.New("not used")
}

func TestRegistry_OnlyEnabledProviders(t *testing.T) {
	r, err := NewRegistry(Config{
		Users:   seedUsers(t),
		BaseURL: "https://app.example/",
		Providers: map[provider.Kind]provider.Credentials{
			provider.Twitter: {ClientID: "id", ClientSecret: "secret"},
		},
		ConnectorFactory: func(kind provider.Kind, _ provider.Credentials, redirectURL string) (provider.Connector, error) {
			return &stubConnector{kind: kind, redirect: redirectURL}, nil
		},
	})
	require.NoError(t, err)

	_, ok := r.Get(Local)
	require.True(t, ok)
	_, ok = r.Get(GoogleLogin)
	require.False(t, ok)
	require.Equal(t, []provider.Kind{provider.Twitter}, r.Enabled())

	ext, ok := r.External(provider.Twitter, IntentRegister)
	require.True(t, ok)
	require.Equal(t, TwitterRegister, ext.Name())
	require.Equal(t, "https://app.example/register/twitter/return", ext.Connector().(*stubConnector).redirect)
}

func TestResolve_RecordsAndReturnsOutcome(t *testing.T) {
	out := Resolve(context.Background(), NewLocal(seedUsers(t)), Credentials{Email: "ada@example.com", Password: "nope"})
	require.True(t, out.IsRejected())
	require.Equal(t, "rejected", out.Label())
}
