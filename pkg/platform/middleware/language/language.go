// Package language negotiates the response language from ?lang= or
// Accept-Language against the supported set.
package language

import (
	"net/http"

	"golang.org/x/text/language"

	"storefront/pkg/requestcontext"
)

// Supported lists the negotiable languages; the first entry is the fallback.
var Supported = []language.Tag{
	language.English,
	language.French,
	language.German,
	language.Spanish,
}

var matcher = language.NewMatcher(Supported)

// Negotiate stores the negotiated base language (e.g. "fr") in the context
// and echoes it in Content-Language.
func Negotiate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := Match(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Language", lang)
		next.ServeHTTP(w, r.WithContext(requestcontext.WithLanguage(r.Context(), lang)))
	})
}

// Match picks a supported language. An explicit query value wins over the
// header when it matches; unparseable input falls through to the fallback.
func Match(queryLang, acceptLanguage string) string {
	if queryLang != "" {
		if tag, err := language.Parse(queryLang); err == nil {
			if _, idx, conf := matcher.Match(tag); conf != language.No {
				return base(Supported[idx])
			}
		}
	}
	if acceptLanguage != "" {
		tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
		if err == nil && len(tags) > 0 {
			if _, idx, conf := matcher.Match(tags...); conf != language.No {
				return base(Supported[idx])
			}
		}
	}
	return base(Supported[0])
}

func base(tag language.Tag) string {
	b, _ := tag.Base()
	return b.String()
}
