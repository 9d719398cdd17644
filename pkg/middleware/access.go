package middleware

import (
	"net/http"
	"strings"

	"gym-booking/pkg/auth"
	"gym-booking/pkg/utils"

	"go.uber.org/zap"
)

// AccessScope resolves the caller's tenant/location scope from the access
// token issued by the identity service. Everything behind this middleware
// trusts the scope: eligibility and membership were evaluated upstream.
func AccessScope(secret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			scope, err := auth.ParseToken(parts[1], secret)
			if err != nil {
				logger.Warn("Invalid access token", zap.Error(err))
				utils.ResponseUnauthorized(w, "Invalid or expired access token")
				return
			}

			ctx := utils.SetScopeContext(r.Context(), scope)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Staff requires the staff role. Must run after AccessScope.
func Staff(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, ok := utils.GetScopeFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			if !scope.IsStaff() {
				logger.Warn("Staff check: non-staff access attempt",
					zap.String("user_id", scope.UserID.String()),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Staff access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Eligible requires an active booking entitlement. Staff pass through so
// front-desk bookings on behalf of walk-ins keep working.
func Eligible(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, ok := utils.GetScopeFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			if !scope.EligibleToBook && !scope.IsStaff() {
				logger.Warn("Eligibility check failed",
					zap.String("user_id", scope.UserID.String()),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Active membership required to book")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
