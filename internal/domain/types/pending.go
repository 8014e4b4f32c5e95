package types

import "time"

// PendingRegistration captures a social identity that matched no account.
// It lives in the caller's session until registration completes, the user
// logs out, or ExpiresAt passes.
type PendingRegistration struct {
	Provider   string         `json:"provider"`
	Identifier string         `json:"identifier"`
	Profile    map[string]any `json:"profile,omitempty"`
	ExpiresAt  time.Time      `json:"expires_at"`
}

// Expired reports whether p can no longer be used at now.
func (p *PendingRegistration) Expired(now time.Time) bool {
	return p == nil || (!p.ExpiresAt.IsZero() && !now.Before(p.ExpiresAt))
}
