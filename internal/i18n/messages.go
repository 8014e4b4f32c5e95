package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The English text doubles as the key.
const (
	MsgLoginError  = "Login error"
	MsgLoginFailed = "Login failed"
)

var translations = map[language.Tag]map[string]string{
	language.English: {
		MsgLoginError:  MsgLoginError,
		MsgLoginFailed: MsgLoginFailed,
	},
	language.Slovak: {
		MsgLoginError:  "Chyba pri prihlasovaní",
		MsgLoginFailed: "Prihlásenie zlyhalo",
	},
	language.Czech: {
		MsgLoginError:  "Chyba při přihlašování",
		MsgLoginFailed: "Přihlášení selhalo",
	},
}

var messages = buildCatalog()

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, entries := range translations {
		for key, text := range entries {
			if err := b.SetString(tag, key, text); err != nil {
				panic("i18n: " + err.Error())
			}
		}
	}
	return b
}

// T translates key for lang. A nil lang means English.
func T(lang *Language, key string) string {
	tag := language.English
	if lang != nil {
		tag = lang.Tag
	}
	return message.NewPrinter(tag, message.Catalog(messages)).Sprintf(key)
}
