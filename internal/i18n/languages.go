// Package i18n holds the table of supported languages and the localized
// user-facing messages of the login endpoints.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Language is a resolved entry of the locale table.
type Language struct {
	Code string       // "en", "sk", "cs"
	Name string       // native name
	Tag  language.Tag // BCP 47 tag
}

var supported = []*Language{
	{Code: "en", Name: "English", Tag: language.English},
	{Code: "sk", Name: "Slovenčina", Tag: language.Slovak},
	{Code: "cs", Name: "Čeština", Tag: language.Czech},
}

var (
	byCode  = map[string]*Language{}
	matcher language.Matcher
)

func init() {
	tags := make([]language.Tag, 0, len(supported))
	for _, l := range supported {
		byCode[l.Code] = l
		tags = append(tags, l.Tag)
	}
	matcher = language.NewMatcher(tags)
}

// Lookup resolves a language code against the table. Regional variants
// ("en-GB") resolve to their base language. Unknown codes return nil.
func Lookup(code string) *Language {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if l, ok := byCode[code]; ok {
		return l
	}
	tag, err := language.Parse(code)
	if err != nil {
		return nil
	}
	base, _ := tag.Base()
	return byCode[base.String()]
}

// Supported returns the table in display order.
func Supported() []*Language {
	out := make([]*Language, len(supported))
	copy(out, supported)
	return out
}

// Negotiate picks the best supported language for an Accept-Language header.
// fallback is used when nothing matches.
func Negotiate(acceptLanguage string, fallback *Language) *Language {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return supported[idx]
}
