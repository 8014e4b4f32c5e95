package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellologin/internal/cache"
	"github.com/dropDatabas3/hellologin/internal/domain/types"
)

var testKey = []byte("test-signing-key-0123456789abcdef")

func TestBridge_RoundTrip(t *testing.T) {
	b := NewBridge(testKey, time.Hour)
	users := []*types.User{
		types.NewUser(types.UserData{ID: "1", Email: "a@b.com"}),
		types.NewUser(types.UserData{ID: "2", Email: "ada@example.com", FirstName: "Ada"}),
		types.NewUser(types.UserData{ID: "3", Email: "l@example.com", LastName: "Lovelace", Language: "sk"}),
		types.NewUser(types.UserData{ID: "4", Email: "x@example.com", FirstName: "Ada", LastName: "Lovelace",
			ExternalIDs: []string{"twitter://999", "google://g1"}}),
		types.NewUser(types.UserData{ID: "5", ExternalIDs: []string{"facebook://7"}}),
	}

	for _, u := range users {
		token, err := b.Serialize(u)
		require.NoError(t, err)

		got, err := b.Deserialize(token)
		require.NoError(t, err)
		require.Equal(t, u.Email, got.Email)
		require.Equal(t, u.DisplayName(), got.DisplayName())
		require.Equal(t, u.ExternalIDs(), got.ExternalIDs())
		require.Equal(t, u.ID, got.ID)
		require.Equal(t, u.LanguageCode(), got.LanguageCode())
	}
}

func TestBridge_OmitsPasswordHash(t *testing.T) {
	b := NewBridge(testKey, 0)
	token, err := b.Serialize(types.NewUser(types.UserData{Email: "a@b.com", PasswordHash: "$argon2id$secret"}))
	require.NoError(t, err)

	got, err := b.Deserialize(token)
	require.NoError(t, err)
	require.Empty(t, got.PasswordHash)
}

func TestBridge_RejectsMalformed(t *testing.T) {
	b := NewBridge(testKey, time.Hour)
	token, err := b.Serialize(types.NewUser(types.UserData{Email: "a@b.com"}))
	require.NoError(t, err)

	other := NewBridge([]byte("another-signing-key-0123456789abcd"), time.Hour)
	_, err = other.Deserialize(token)
	require.ErrorIs(t, err, ErrMalformedToken)

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	for _, bad := range []string{"", "garbage", tampered} {
		_, err := b.Deserialize(bad)
		require.ErrorIs(t, err, ErrMalformedToken, bad)
		require.True(t, IsMalformed(err))
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"email": "a@b.com", "iss": tokenIssuer}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = b.Deserialize(none)
	require.ErrorIs(t, err, ErrMalformedToken)
}

func TestBridge_Expired(t *testing.T) {
	b := NewBridge(testKey, time.Minute)
	issued := time.Now().Add(-time.Hour)
	b.now = func() time.Time { return issued }
	token, err := b.Serialize(types.NewUser(types.UserData{Email: "a@b.com"}))
	require.NoError(t, err)

	b.now = time.Now
	_, err = b.Deserialize(token)
	require.ErrorIs(t, err, ErrMalformedToken)
}

func newTestManager() *Manager {
	return NewManager(cache.NewMemory("", time.Minute), NewBridge(testKey, time.Hour), Config{TTL: time.Hour})
}

// roundTrip saves s and returns a request carrying the resulting cookie.
func roundTrip(t *testing.T, m *Manager, s *Session) (*http.Request, *http.Cookie) {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, m.Save(context.Background(), rec, s))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	return req, cookies[0]
}

func TestManager_LoadWithoutCookieIsAnonymous(t *testing.T) {
	m := newTestManager()
	s, err := m.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.True(t, s.IsNew())
	require.False(t, s.Authenticated())

	u, err := m.User(s)
	require.NoError(t, err)
	require.Nil(t, u)
}

func TestManager_UnknownCookieIsAnonymous(t *testing.T) {
	m := newTestManager()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "forged"})

	s, err := m.Load(context.Background(), req)
	require.NoError(t, err)
	require.True(t, s.IsNew())
}

func TestManager_LoginRotatesAndPersists(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	s := &Session{}
	s.SetPending(&types.PendingRegistration{Provider: "twitter", Identifier: "twitter://1"})
	req, first := roundTrip(t, m, s)
	require.True(t, first.HttpOnly)

	s, err := m.Load(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, s.Pending(time.Now()))

	u := types.NewUser(types.UserData{ID: "u1", Email: "a@b.com", FirstName: "Ada"})
	require.NoError(t, m.Login(s, u))
	req2, second := roundTrip(t, m, s)
	require.NotEqual(t, first.Value, second.Value)

	// Old id is gone.
	old, err := m.Load(ctx, req)
	require.NoError(t, err)
	require.True(t, old.IsNew())

	s2, err := m.Load(ctx, req2)
	require.NoError(t, err)
	require.Nil(t, s2.Pending(time.Now()))
	got, err := m.User(s2)
	require.NoError(t, err)
	require.Equal(t, "Ada", got.DisplayName())
}

func TestSession_PendingExpires(t *testing.T) {
	now := time.Now()
	s := &Session{}
	s.SetPending(&types.PendingRegistration{Identifier: "google://1", ExpiresAt: now.Add(time.Minute)})

	require.NotNil(t, s.Pending(now))
	require.Nil(t, s.Pending(now.Add(time.Minute)))
	require.Nil(t, s.rec.Pending)
}

func TestSession_TakeOAuthIsOneShot(t *testing.T) {
	now := time.Now()
	s := &Session{}
	s.SetOAuth(&OAuthState{State: "st", Verifier: "v", ExpiresAt: now.Add(time.Minute)})

	st := s.TakeOAuth(now)
	require.NotNil(t, st)
	require.Equal(t, "st", st.State)
	require.Nil(t, s.TakeOAuth(now))

	s.SetOAuth(&OAuthState{State: "old", ExpiresAt: now.Add(-time.Second)})
	require.Nil(t, s.TakeOAuth(now))
}

func TestManager_DestroyIsIdempotent(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	// No cookie at all.
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		require.NoError(t, m.Destroy(ctx, rec, httptest.NewRequest(http.MethodPost, "/logout", nil)))
		require.Empty(t, rec.Result().Cookies())
	}

	// Real session, destroyed twice with the same cookie.
	s := &Session{}
	require.NoError(t, m.Login(s, types.NewUser(types.UserData{Email: "a@b.com"})))
	req, _ := roundTrip(t, m, s)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		require.NoError(t, m.Destroy(ctx, rec, req))
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, -1, cookies[0].MaxAge)
	}

	loaded, err := m.Load(ctx, req)
	require.NoError(t, err)
	require.False(t, loaded.Authenticated())
}

func TestManager_SaveSkipsCleanSession(t *testing.T) {
	m := newTestManager()
	rec := httptest.NewRecorder()
	require.NoError(t, m.Save(context.Background(), rec, &Session{}))
	require.Empty(t, rec.Result().Cookies())
}

func TestParseSameSite(t *testing.T) {
	require.Equal(t, http.SameSiteStrictMode, ParseSameSite("Strict"))
	require.Equal(t, http.SameSiteNoneMode, ParseSameSite("none"))
	require.Equal(t, http.SameSiteLaxMode, ParseSameSite(""))
}
