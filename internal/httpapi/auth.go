package httpapi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// #region auth

// tokenAuth accepts any of a fixed set of opaque bearer tokens. With no
// tokens configured every request is rejected.
type tokenAuth struct {
	tokens [][]byte
}

func newTokenAuth(tokens []string) *tokenAuth {
	a := &tokenAuth{}
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			a.tokens = append(a.tokens, []byte(t))
		}
	}
	return a
}

// valid compares against every token so timing does not reveal which one
// matched.
func (a *tokenAuth) valid(token string) bool {
	if token == "" {
		return false
	}
	ok := 0
	for _, t := range a.tokens {
		ok |= subtle.ConstantTimeCompare([]byte(token), t)
	}
	return ok == 1
}

func (a *tokenAuth) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, found := bearerToken(r.Header.Get("Authorization"))
		if !found || !a.valid(token) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="trustlens"`)
			respondWithError(w, http.StatusUnauthorized, "invalid or missing bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken extracts the credential from an Authorization header. The
// scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// #endregion auth
