package strategy

import (
	"github.com/dropDatabas3/hellologin/internal/auth/provider"
	"github.com/dropDatabas3/hellologin/internal/domain/types"
)

// Reason explains a rejection. Reasons are for logs and metrics; users only
// ever see a generic message.
type Reason string

const (
	ReasonInvalidCredentials Reason = "invalid_credentials"
	ReasonNotLinked          Reason = "not_linked"
	ReasonMalformedAssertion Reason = "malformed_assertion"
	ReasonProviderDenied     Reason = "provider_denied"
	ReasonStateMismatch      Reason = "state_mismatch"
)

type outcomeKind int

const (
	kindAuthenticated outcomeKind = iota + 1
	kindRejected
	kindFault
)

// Outcome is exactly one of Authenticated, Rejected or Fault.
// Build it with the constructors; the zero value is none of them.
type Outcome struct {
	kind    outcomeKind
	user    *types.User
	reason  Reason
	pending *types.PendingRegistration
	err     error
}

// Authenticated is a successful resolution.
func Authenticated(u *types.User) Outcome {
	return Outcome{kind: kindAuthenticated, user: u}
}

// Rejected is an expected negative result. pending is set only when an
// unknown social identity should be offered for registration.
func Rejected(reason Reason, pending *types.PendingRegistration) Outcome {
	return Outcome{kind: kindRejected, reason: reason, pending: pending}
}

// Fault is an infrastructure failure.
func Fault(err error) Outcome {
	return Outcome{kind: kindFault, err: err}
}

func (o Outcome) IsAuthenticated() bool { return o.kind == kindAuthenticated }
func (o Outcome) IsRejected() bool      { return o.kind == kindRejected }
func (o Outcome) IsFault() bool         { return o.kind == kindFault }

// User is set for Authenticated outcomes.
func (o Outcome) User() *types.User { return o.user }

// Reason is set for Rejected outcomes.
func (o Outcome) Reason() Reason { return o.reason }

// Pending is the registration to capture, if any.
func (o Outcome) Pending() *types.PendingRegistration { return o.pending }

// Err is set for Fault outcomes.
func (o Outcome) Err() error { return o.err }

// Label is the metrics/log label of the outcome.
func (o Outcome) Label() string {
	switch o.kind {
	case kindAuthenticated:
		return "authenticated"
	case kindRejected:
		return "rejected"
	case kindFault:
		return "fault"
	}
	return "none"
}

// Credentials is the input of Resolve. Local uses Email and Password;
// external strategies use Assertion.
type Credentials struct {
	Email     string
	Password  string
	Assertion *provider.Assertion
}
