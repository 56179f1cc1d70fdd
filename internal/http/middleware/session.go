package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const sessionClaimsKey contextKey = "sessionClaims"

// SessionClaims is the portal session token payload. MapleIMEReferenceID
// is the doctor's id on the main server; the portal never stores doctors
// itself, so every upstream call is scoped by this value.
type SessionClaims struct {
	jwt.RegisteredClaims
	Email               string `json:"email,omitempty"`
	Name                string `json:"name,omitempty"`
	MapleIMEReferenceID string `json:"mapleimeReferenceId,omitempty"`
}

// SessionJWT enforces a HMAC-signed session token on portal endpoints.
func SessionJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "session auth disabled", http.StatusUnauthorized)
				return
			}
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(auth, "Bearer ")
			claims := SessionClaims{}
			token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := ContextWithSession(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ContextWithSession attaches session claims to ctx the way SessionJWT
// does after verification.
func ContextWithSession(ctx context.Context, claims SessionClaims) context.Context {
	return context.WithValue(ctx, sessionClaimsKey, claims)
}

// SessionFromContext returns the session claims if present.
func SessionFromContext(ctx context.Context) (SessionClaims, bool) {
	claims, ok := ctx.Value(sessionClaimsKey).(SessionClaims)
	return claims, ok
}

// DoctorRefFromContext returns the signed-in doctor's main-server id.
// A valid session without one is possible for stale tokens issued before
// the account was linked; callers render the session panel in that case.
func DoctorRefFromContext(ctx context.Context) (string, bool) {
	claims, ok := ctx.Value(sessionClaimsKey).(SessionClaims)
	if !ok {
		return "", false
	}
	return claims.MapleIMEReferenceID, claims.MapleIMEReferenceID != ""
}
