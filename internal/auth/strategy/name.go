// Package strategy turns credentials into an authentication Outcome.
//
// The set of strategies is fixed: one local password strategy plus a login
// and a register strategy per identity provider. Login and register share the
// lookup logic; the strategy name carries the intent so the HTTP layer can
// pick the failure destination.
package strategy

import "github.com/dropDatabas3/hellologin/internal/auth/provider"

// Intent distinguishes the login flow from the register flow.
type Intent int

const (
	IntentLogin Intent = iota
	IntentRegister
)

func (i Intent) String() string {
	if i == IntentRegister {
		return "register"
	}
	return "login"
}

// Name identifies a strategy.
type Name int

const (
	Local Name = iota
	GoogleLogin
	GoogleRegister
	TwitterLogin
	TwitterRegister
	FacebookLogin
	FacebookRegister

	numNames
)

var names = [numNames]string{
	Local:            "local",
	GoogleLogin:      "google-login",
	GoogleRegister:   "google-register",
	TwitterLogin:     "twitter-login",
	TwitterRegister:  "twitter-register",
	FacebookLogin:    "facebook-login",
	FacebookRegister: "facebook-register",
}

func (n Name) String() string {
	if n < 0 || n >= numNames {
		return "unknown"
	}
	return names[n]
}

// Names lists every strategy.
func Names() []Name {
	out := make([]Name, 0, numNames)
	for n := Local; n < numNames; n++ {
		out = append(out, n)
	}
	return out
}

// ExternalName returns the strategy for a provider and intent.
func ExternalName(kind provider.Kind, intent Intent) (Name, bool) {
	var base Name
	switch kind {
	case provider.Google:
		base = GoogleLogin
	case provider.Twitter:
		base = TwitterLogin
	case provider.Facebook:
		base = FacebookLogin
	default:
		return 0, false
	}
	if intent == IntentRegister {
		return base + 1, true
	}
	return base, true
}

// Provider returns the provider behind an external strategy.
func (n Name) Provider() (provider.Kind, bool) {
	switch n {
	case GoogleLogin, GoogleRegister:
		return provider.Google, true
	case TwitterLogin, TwitterRegister:
		return provider.Twitter, true
	case FacebookLogin, FacebookRegister:
		return provider.Facebook, true
	}
	return "", false
}

// Intent reports the flow of an external strategy. Local is a login.
func (n Name) Intent() Intent {
	switch n {
	case GoogleRegister, TwitterRegister, FacebookRegister:
		return IntentRegister
	}
	return IntentLogin
}

// CallbackPath is the provider return route for kind and intent,
// e.g. /login/twitter/return.
func CallbackPath(kind provider.Kind, intent Intent) string {
	return "/" + intent.String() + "/" + kind.Slug() + "/return"
}
