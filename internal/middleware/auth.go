package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"pulse-backend/internal/audit"
	"pulse-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a context carrying the resolved caller identity.
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity returns the caller identity resolved by JWTAuth, if any.
func GetIdentity(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(models.Identity)
	return identity, ok
}

// JWTAuth resolves the caller's identity and role from a Bearer token and
// stores it in the request context. It fails closed: a missing or malformed
// token never reaches a handler. Token issuance lives outside this service.
func JWTAuth(secret string, auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				auditLog.Event("authentication_failed",
					zap.String("path", r.URL.Path),
					zap.String("reason", "missing bearer token"))
				writeAuthError(w, http.StatusUnauthorized, "missing or invalid authentication")
				return
			}

			tokenString := strings.TrimPrefix(header, "Bearer ")
			token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				auditLog.Event("authentication_failed",
					zap.String("path", r.URL.Path),
					zap.String("reason", "invalid token"))
				writeAuthError(w, http.StatusUnauthorized, "missing or invalid authentication")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "missing or invalid authentication")
				return
			}

			username, _ := claims["username"].(string)
			rawRole, _ := claims["role"].(string)
			if username == "" {
				auditLog.Event("authentication_failed",
					zap.String("path", r.URL.Path),
					zap.String("reason", "missing username claim"))
				writeAuthError(w, http.StatusUnauthorized, "missing or invalid authentication")
				return
			}

			role, ok := models.ParseRole(rawRole)
			if !ok {
				auditLog.Event("authentication_failed",
					zap.String("path", r.URL.Path),
					zap.String("user", username),
					zap.String("reason", "invalid role"))
				writeAuthError(w, http.StatusForbidden, "invalid role")
				return
			}

			identity := models.Identity{Username: username, Role: role}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
