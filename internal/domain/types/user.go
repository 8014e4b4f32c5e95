// Package types holds the domain values shared by the store, the strategies
// and the session layer.
package types

import (
	"sort"
	"strings"

	"github.com/dropDatabas3/hellologin/internal/i18n"
)

// UserData is the raw shape of a user as read from storage or decoded from a
// session token. Language is a code that NewUser resolves.
type UserData struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Language     string
	ExternalIDs  []string
}

// User is an immutable user record. Build it with NewUser.
type User struct {
	ID           string
	Email        string
	PasswordHash string // empty for accounts without a local password
	FirstName    string
	LastName     string
	Language     *i18n.Language // nil when unset or unknown

	externalIDs []string
}

// NewUser builds a User from raw data, resolving the language code against
// the locale table and normalizing the external identifier set.
func NewUser(d UserData) *User {
	return &User{
		ID:           d.ID,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		FirstName:    strings.TrimSpace(d.FirstName),
		LastName:     strings.TrimSpace(d.LastName),
		Language:     i18n.Lookup(d.Language),
		externalIDs:  normalizeIDs(d.ExternalIDs),
	}
}

// DisplayName is "First Last" when both names are set, otherwise whichever
// is set, otherwise the email.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Email
	}
}

// ExternalIDs returns a copy of the linked provider identifiers, sorted.
func (u *User) ExternalIDs() []string {
	out := make([]string, len(u.externalIDs))
	copy(out, u.externalIDs)
	return out
}

// HasExternalID reports whether id is linked to this user.
func (u *User) HasExternalID(id string) bool {
	i := sort.SearchStrings(u.externalIDs, id)
	return i < len(u.externalIDs) && u.externalIDs[i] == id
}

// LanguageCode returns the resolved language code or "".
func (u *User) LanguageCode() string {
	if u.Language == nil {
		return ""
	}
	return u.Language.Code
}

// Data converts the record back to its raw shape.
func (u *User) Data() UserData {
	return UserData{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Language:     u.LanguageCode(),
		ExternalIDs:  u.ExternalIDs(),
	}
}

func normalizeIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
