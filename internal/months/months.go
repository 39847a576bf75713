// Package months renders locale-dependent month names. The locale is an
// explicit parameter everywhere; nothing in this package reads or mutates
// process-global locale state.
package months

import (
	"fmt"
	"strings"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

// Locale identifies a month-naming convention.
type Locale = monday.Locale

// Default is the locale used when no locale is configured. It matches the
// language the summary emails were originally written in.
const Default = monday.LocaleEsES

// supported maps the BCP 47 tags this service can render month names for to
// the corresponding monday locale.
var supported = []struct {
	tag    language.Tag
	locale monday.Locale
}{
	{language.MustParse("es-ES"), monday.LocaleEsES},
	{language.MustParse("en-US"), monday.LocaleEnUS},
	{language.MustParse("en-GB"), monday.LocaleEnGB},
	{language.MustParse("fr-FR"), monday.LocaleFrFR},
	{language.MustParse("de-DE"), monday.LocaleDeDE},
	{language.MustParse("pt-BR"), monday.LocalePtBR},
	{language.MustParse("it-IT"), monday.LocaleItIT},
	{language.MustParse("nl-NL"), monday.LocaleNlNL},
}

var matcher language.Matcher

func init() {
	tags := make([]language.Tag, len(supported))
	for i, s := range supported {
		tags[i] = s.tag
	}
	matcher = language.NewMatcher(tags)
}

// Resolve maps a locale string to a supported locale. It accepts both BCP 47
// ("es-ES") and POSIX ("es_ES") spellings. An empty string resolves to
// Default; an unparseable or unsupported tag is an error rather than a silent
// fallback.
func Resolve(tag string) (Locale, error) {
	if tag == "" {
		return Default, nil
	}

	parsed, err := language.Parse(strings.ReplaceAll(tag, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("invalid locale %q: %w", tag, err)
	}

	_, idx, conf := matcher.Match(parsed)
	if conf == language.No {
		return "", fmt.Errorf("unsupported locale %q", tag)
	}
	return supported[idx].locale, nil
}

// Name returns the full month name of t rendered in the given locale,
// e.g. July 2026 -> "julio" for es_ES, "July" for en_US.
func Name(t time.Time, loc Locale) string {
	return monday.Format(t, "January", loc)
}
