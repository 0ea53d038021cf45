package normalize

import (
	"regexp"

	"golang.org/x/text/language"
)

// languageGuess pairs a language code with the word list that indicates it.
// Order matters: the first match wins, so German is tested before French
// even though several articles are shared across the Romance languages.
type languageGuess struct {
	code    string
	pattern *regexp.Regexp
}

var languageGuesses = []languageGuess{
	{"de", regexp.MustCompile(`(?i)\b(ein|eine|der|die|das|mit|und|zu|für|von|über|buch|schreiben)\b`)},
	{"fr", regexp.MustCompile(`(?i)\b(un|une|le|la|les|avec|et|pour|de|du|sur|livre|écrire)\b`)},
	{"es", regexp.MustCompile(`(?i)\b(un|una|el|la|los|con|y|para|de|del|sobre|libro|escribir)\b`)},
	{"it", regexp.MustCompile(`(?i)\b(un|una|il|la|gli|con|e|per|di|del|su|libro|scrivere)\b`)},
	{"pt", regexp.MustCompile(`(?i)\b(um|uma|o|a|os|com|e|para|de|do|sobre|livro|escrever)\b`)},
}

// GuessLanguage infers a language code from a book title using per-language
// keyword lists. First match wins; the default is "en".
//
// Accuracy is best-effort only. Short or non-lexical titles will misfire and
// callers must not treat the output as authoritative — it seeds the language
// field of auto-created books and nothing else.
func GuessLanguage(title string) string {
	if title == "" {
		return "en"
	}

	for _, guess := range languageGuesses {
		if guess.pattern.MatchString(title) {
			return guess.code
		}
	}

	return "en"
}

// LanguageCode canonicalizes an arbitrary language string ("eng", "en-US",
// "German") to a base ISO 639-1 code. Unparseable input falls back to "en".
func LanguageCode(raw string) string {
	if raw == "" {
		return "en"
	}

	tag, err := language.Parse(raw)
	if err != nil {
		return "en"
	}

	base, conf := tag.Base()
	if conf == language.No {
		return "en"
	}
	return base.String()
}
