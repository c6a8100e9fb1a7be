package middleware

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"raven/pkg/auth"
	pkgerrors "raven/pkg/errors"
)

// Authenticate validates the bearer token on every request and stores the
// claims on the request context. A nil validator disables authentication.
func Authenticate(validator *auth.JWTValidator, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if validator == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				errorHandler.HandleStatus(w, r, http.StatusUnauthorized, "Missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				errorHandler.HandleStatus(w, r, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}

			claims, err := validator.ValidateToken(parts[1])
			if err != nil {
				logger.Debug("Token rejected", zap.Error(err))
				errorHandler.HandleStatus(w, r, http.StatusUnauthorized, unauthorizedMessage(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.ContextWithClaims(r.Context(), claims)))
		})
	}
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token has expired"
	case errors.Is(err, auth.ErrInvalidSignature):
		return "Invalid token signature"
	default:
		return "Invalid token"
	}
}
