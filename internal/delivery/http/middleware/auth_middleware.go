package middleware

import (
	"net/http"

	"merchant-studio/internal/domain"
	"merchant-studio/pkg/logger"
	"merchant-studio/pkg/utils"
)

// AuthMiddleware authenticates the merchant from the access token. The merchant comes
// from the token claims, and the raw token is kept in the context so it can be forwarded
// to the catalog API unchanged.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := utils.ExtractBearer(r)
		if tokenString == "" {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: No token provided")
			return
		}

		claims, err := utils.ValidateJWT(tokenString)
		if err != nil {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: Invalid token")
			return
		}

		sub, _ := claims["sub"].(string)
		if sub == "" {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: Token has no subject")
			return
		}
		reportMerchant(r.Context(), sub)
		email, _ := claims["email"].(string)
		role, _ := claims["role"].(string)

		ctx := domain.WithMerchant(r.Context(), &domain.Merchant{ID: sub, Email: email, Role: role})
		ctx = domain.WithBearer(ctx, tokenString)

		l := logger.WithMerchantID(*logger.WithContext(ctx), sub)
		ctx = logger.NewContext(ctx, &l)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole admits merchants whose token carries one of roles.
// MUST be used AFTER AuthMiddleware.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			merchant, ok := domain.MerchantFrom(r.Context())
			if !ok {
				utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: No merchant found in context")
				return
			}
			if !allowed[merchant.Role] {
				utils.WriteError(w, http.StatusForbidden, "Forbidden: Merchant access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
