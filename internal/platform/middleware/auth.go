package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// JWTValidator defines the interface for validating JWT tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator.
type JWTClaims struct {
	UserID string
	Email  string
}

// Context keys for storing authenticated user information.
type contextKeyUserID struct{}
type contextKeyEmail struct{}
type contextKeyGuest struct{}

var (
	ContextKeyUserID = contextKeyUserID{}
	ContextKeyEmail  = contextKeyEmail{}
	ContextKeyGuest  = contextKeyGuest{}
)

// GetUserID retrieves the authenticated user ID from the context, empty when
// the request carried no valid token.
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(ContextKeyUserID).(string)
	if !ok {
		return ""
	}
	return userID
}

// GetEmail retrieves the authenticated user's email from the context.
func GetEmail(ctx context.Context) string {
	email, ok := ctx.Value(ContextKeyEmail).(string)
	if !ok {
		return ""
	}
	return email
}

// IsGuestRequest reports whether the request opted into guest mode.
func IsGuestRequest(ctx context.Context) bool {
	guest, ok := ctx.Value(ContextKeyGuest).(bool)
	return ok && guest
}

// Identity resolves the caller: a valid bearer token binds an identity, the
// X-Guest-Mode header selects guest mode. Requests with neither pass through
// unauthenticated; handlers decide whether that is acceptable per route.
func Identity(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if r.Header.Get("X-Guest-Mode") == "true" {
				ctx = context.WithValue(ctx, ContextKeyGuest, true)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			authHeader := r.Header.Get("Authorization")
			if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
				claims, err := validator.ValidateToken(token)
				if err != nil {
					logger.WarnContext(ctx, "invalid bearer token",
						"error", err,
						"request_id", GetRequestID(ctx),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusUnauthorized)
					_, _ = w.Write([]byte(`{"error":"invalid or expired token"}`))
					return
				}
				ctx = context.WithValue(ctx, ContextKeyUserID, claims.UserID)
				ctx = context.WithValue(ctx, ContextKeyEmail, claims.Email)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
