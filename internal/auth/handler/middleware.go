package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/timbra/timbra-backend/internal/auth/jwt"
	"github.com/timbra/timbra-backend/internal/auth/repository"
	"github.com/timbra/timbra-backend/pkg/errors"
	"github.com/timbra/timbra-backend/pkg/httputil"
)

// RequireAuth validates the bearer token and puts the account identity
// on the request context.
func RequireAuth(jwtManager *jwt.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				httputil.Error(w, errors.Unauthorized("missing bearer token"))
				return
			}

			claims, err := jwtManager.Validate(token)
			if err != nil {
				httputil.Error(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), httputil.AccountIDKey, claims.AccountID)
			ctx = context.WithValue(ctx, httputil.RoleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose account is not the admin. It must
// run after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if httputil.GetRole(r.Context()) != repository.RoleAdmin {
			httputil.Error(w, errors.Forbidden("admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
