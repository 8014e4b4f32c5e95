package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/hellologin/internal/cache"
	"github.com/dropDatabas3/hellologin/internal/domain/types"
	"github.com/dropDatabas3/hellologin/internal/observability/logger"
	tokens "github.com/dropDatabas3/hellologin/internal/security/token"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name     string
	Domain   string
	Path     string
	SameSite http.SameSite
	Secure   bool
}

// Config tunes the manager.
type Config struct {
	Cookie CookieConfig
	// TTL of the session record and cookie.
	TTL time.Duration
}

// Manager loads and stores sessions.
type Manager struct {
	cache  cache.Client
	bridge *Bridge
	cfg    Config
	now    func() time.Time
}

// NewManager fills in defaults: cookie "sid" on "/", SameSite=Lax, 12h TTL.
func NewManager(c cache.Client, b *Bridge, cfg Config) *Manager {
	if cfg.Cookie.Name == "" {
		cfg.Cookie.Name = "sid"
	}
	if cfg.Cookie.Path == "" {
		cfg.Cookie.Path = "/"
	}
	if cfg.Cookie.SameSite == 0 {
		cfg.Cookie.SameSite = http.SameSiteLaxMode
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 12 * time.Hour
	}
	return &Manager{cache: c, bridge: b, cfg: cfg, now: time.Now}
}

// Now is the manager clock.
func (m *Manager) Now() time.Time { return m.now() }

// CookieName returns the session cookie name.
func (m *Manager) CookieName() string { return m.cfg.Cookie.Name }

func storageKey(id string) string {
	return "sid:" + tokens.SHA256Hex(id)
}

func newID() (string, error) {
	id, err := tokens.Opaque(32)
	if err != nil {
		return "", fmt.Errorf("session: generate id: %w", err)
	}
	return id, nil
}

// Load returns the request's session. A missing cookie, an unknown id or an
// unreadable record yields a fresh anonymous session. Cache faults are
// returned as errors.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	ck, err := r.Cookie(m.cfg.Cookie.Name)
	if err != nil || strings.TrimSpace(ck.Value) == "" {
		return &Session{}, nil
	}
	id := ck.Value

	raw, err := m.cache.Get(ctx, storageKey(id))
	if cache.IsNotFound(err) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}

	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		logger.From(ctx).Warn("discarding unreadable session record", logger.Err(err))
		return &Session{}, nil
	}
	return &Session{id: id, rec: rec}, nil
}

// Save persists s if it changed and (re)sets the cookie.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if !s.dirty {
		return nil
	}
	if s.id == "" {
		id, err := newID()
		if err != nil {
			return err
		}
		s.id = id
	}

	raw, err := json.Marshal(s.rec)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	if err := m.cache.Set(ctx, storageKey(s.id), string(raw), m.cfg.TTL); err != nil {
		return fmt.Errorf("session: store: %w", err)
	}
	if s.prevID != "" {
		if err := m.cache.Delete(ctx, storageKey(s.prevID)); err != nil {
			logger.From(ctx).Warn("failed to delete rotated session", logger.Err(err))
		}
		s.prevID = ""
	}
	s.dirty = false

	http.SetCookie(w, m.cookie(s.id, int(m.cfg.TTL.Seconds())))
	return nil
}

// Destroy deletes the request's session and expires its cookie. Without a
// session cookie it does nothing.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	ck, err := r.Cookie(m.cfg.Cookie.Name)
	if err != nil || strings.TrimSpace(ck.Value) == "" {
		return nil
	}
	http.SetCookie(w, m.cookie("", -1))
	if err := m.cache.Delete(ctx, storageKey(ck.Value)); err != nil {
		return fmt.Errorf("session: destroy: %w", err)
	}
	return nil
}

// Login stores u as the session identity and rotates the session id.
// The pending registration is cleared.
func (m *Manager) Login(s *Session, u *types.User) error {
	token, err := m.bridge.Serialize(u)
	if err != nil {
		return err
	}
	s.setIdentity(token)
	s.ClearPending()
	s.rotate()
	return nil
}

// User returns the session identity, or nil for anonymous sessions.
// A token that no longer verifies is cleared and reported as
// ErrMalformedToken.
func (m *Manager) User(s *Session) (*types.User, error) {
	if s == nil || s.rec.Identity == "" {
		return nil, nil
	}
	u, err := m.bridge.Deserialize(s.rec.Identity)
	if err != nil {
		s.ClearIdentity()
		return nil, err
	}
	return u, nil
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     m.cfg.Cookie.Name,
		Value:    value,
		Path:     m.cfg.Cookie.Path,
		Domain:   m.cfg.Cookie.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.cfg.Cookie.Secure,
		SameSite: m.cfg.Cookie.SameSite,
	}
	if maxAge < 0 {
		c.Expires = time.Unix(0, 0)
	}
	return c
}

// ParseSameSite maps a config string to http.SameSite. Unknown values are Lax.
func ParseSameSite(s string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// IsMalformed reports whether err came from a bad identity token.
func IsMalformed(err error) bool { return errors.Is(err, ErrMalformedToken) }
