package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"pet-adoption-economy/internal/ports/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

const (
	HeaderDebugUserID = "X-Debug-User-ID"
	HeaderDebugRole   = "X-Debug-Role"
)

// AuthContext resuelve la identidad del request y la deja en el contexto.
// Con verifier se exige Bearer token válido; sin verifier (modo dev) se
// confía en X-Debug-User-ID y X-Debug-Role. Nunca corta el request: los
// handlers deciden 401/403.
func AuthContext(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	resolve := func(r *http.Request) (auth.Claims, bool) {
		return debugClaims(r)
	}
	if verifier != nil {
		resolve = func(r *http.Request) (auth.Claims, bool) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				return auth.Claims{}, false
			}
			c, err := verifier.Verify(r.Context(), token)
			return c, err == nil && c.UserID > 0
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c, ok := resolve(r); ok {
				r = r.WithContext(WithClaims(r.Context(), c))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func debugClaims(r *http.Request) (auth.Claims, bool) {
	uid, err := strconv.ParseInt(strings.TrimSpace(r.Header.Get(HeaderDebugUserID)), 10, 64)
	if err != nil || uid <= 0 {
		return auth.Claims{}, false
	}
	return auth.Claims{
		UserID: uid,
		Role:   strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderDebugRole))),
	}, true
}

func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(auth.Claims)
	return c, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
