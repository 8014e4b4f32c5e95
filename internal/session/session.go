package session

import (
	"context"
	"time"

	"github.com/dropDatabas3/hellologin/internal/domain/types"
)

// OAuthState is the handshake data kept between the provider redirect and
// its return. It is consumed once.
type OAuthState struct {
	State     string    `json:"state"`
	Verifier  string    `json:"verifier"`
	Provider  string    `json:"provider"`
	Intent    string    `json:"intent"`
	ExpiresAt time.Time `json:"expires_at"`
}

// record is what the cache stores per session.
type record struct {
	Identity string                     `json:"identity,omitempty"`
	Pending  *types.PendingRegistration `json:"pending,omitempty"`
	OAuth    *OAuthState                `json:"oauth,omitempty"`
}

// Session is one client's session. It is owned by a single request and is
// not safe for concurrent use.
type Session struct {
	id     string // cookie value; empty until first save
	prevID string // set by rotate, deleted on save
	rec    record
	dirty  bool
}

// IsNew reports whether the session has never been saved.
func (s *Session) IsNew() bool { return s.id == "" }

// Authenticated reports whether an identity token is present.
func (s *Session) Authenticated() bool { return s.rec.Identity != "" }

// Pending returns the pending registration, or nil when there is none or it
// expired. Expired values are dropped.
func (s *Session) Pending(now time.Time) *types.PendingRegistration {
	p := s.rec.Pending
	if p == nil {
		return nil
	}
	if p.Expired(now) {
		s.ClearPending()
		return nil
	}
	return p
}

// SetPending replaces the pending registration.
func (s *Session) SetPending(p *types.PendingRegistration) {
	s.rec.Pending = p
	s.dirty = true
}

// ClearPending drops the pending registration.
func (s *Session) ClearPending() {
	if s.rec.Pending != nil {
		s.rec.Pending = nil
		s.dirty = true
	}
}

// SetOAuth stores handshake state, replacing any previous one.
func (s *Session) SetOAuth(st *OAuthState) {
	s.rec.OAuth = st
	s.dirty = true
}

// TakeOAuth returns and clears the handshake state. Expired state is
// cleared and reported as absent.
func (s *Session) TakeOAuth(now time.Time) *OAuthState {
	st := s.rec.OAuth
	if st == nil {
		return nil
	}
	s.rec.OAuth = nil
	s.dirty = true
	if !st.ExpiresAt.IsZero() && !now.Before(st.ExpiresAt) {
		return nil
	}
	return st
}

// ClearIdentity logs the session out without destroying it.
func (s *Session) ClearIdentity() {
	if s.rec.Identity != "" {
		s.rec.Identity = ""
		s.dirty = true
	}
}

func (s *Session) setIdentity(token string) {
	s.rec.Identity = token
	s.dirty = true
}

// rotate moves the session to a new id on the next save.
func (s *Session) rotate() {
	if s.id != "" && s.prevID == "" {
		s.prevID = s.id
	}
	s.id = ""
	s.dirty = true
}

type ctxKey struct{}

// ToContext attaches s to ctx.
func ToContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached by the session middleware, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
