package middleware

import (
	"context"
	"net/http"
)

const countryKey contextKey = "country"

// CountryResolver looks up the country of a client address.
type CountryResolver interface {
	CountryCode(addr string) string
}

// Country stores the client's country in the request context so the access
// log can report it. A nil resolver disables the lookup.
func Country(resolver CountryResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if resolver == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if code := resolver.CountryCode(clientIP(r)); code != "" {
				r = r.WithContext(context.WithValue(r.Context(), countryKey, code))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func CountryFromContext(ctx context.Context) string {
	v, _ := ctx.Value(countryKey).(string)
	return v
}
