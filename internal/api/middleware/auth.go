package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/example/storefront-checkout/internal/auth"
)

// AccessTokenCookie is set by the storefront after the customer signs in.
const AccessTokenCookie = "access_token"

// Error codes written by the auth middleware.
const (
	CodeSignInRequired = "SIGN_IN_REQUIRED"
	CodeTokenRejected  = "TOKEN_REJECTED"
	CodeForbidden      = "FORBIDDEN"
)

// TokenVerifier validates a customer access token.
type TokenVerifier interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

type customerKey struct{}

// tokenSources are consulted in order; the storefront cookie wins over an
// Authorization header sent by API clients.
var tokenSources = []func(*http.Request) string{
	func(r *http.Request) string {
		if c, err := r.Cookie(AccessTokenCookie); err == nil {
			return c.Value
		}
		return ""
	},
	func(r *http.Request) string {
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || scheme != "Bearer" {
			return ""
		}
		return token
	},
}

// AccessToken returns the first access token found on the request.
func AccessToken(r *http.Request) string {
	for _, source := range tokenSources {
		if token := source(r); token != "" {
			return token
		}
	}
	return ""
}

func denyAccess(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": code})
}

// RequireCustomer lets through only requests carrying a valid token and
// attaches the customer to the context.
func RequireCustomer(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := AccessToken(r)
			if token == "" {
				denyAccess(w, http.StatusUnauthorized, CodeSignInRequired, "sign in to continue")
				return
			}
			claims, err := verifier.ValidateAccessToken(token)
			if err != nil {
				log.Printf("[Auth] Rejected token on %s %s: %v", r.Method, r.URL.Path, err)
				denyAccess(w, http.StatusUnauthorized, CodeTokenRejected, "access token rejected")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCustomer(r.Context(), claims)))
		})
	}
}

// IdentifyCustomer attaches the customer when a valid token is present and
// otherwise serves the request as a guest checkout.
func IdentifyCustomer(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := AccessToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := verifier.ValidateAccessToken(token)
			if err != nil {
				log.Printf("[Auth] Continuing as guest, token ignored: %v", err)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCustomer(r.Context(), claims)))
		})
	}
}

// RequireRole must run after RequireCustomer.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := Customer(r.Context())
			if !ok {
				denyAccess(w, http.StatusUnauthorized, CodeSignInRequired, "sign in to continue")
				return
			}
			if _, ok := allowed[claims.Role]; !ok {
				denyAccess(w, http.StatusForbidden, CodeForbidden, "role "+claims.Role+" may not do this")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithCustomer(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, customerKey{}, claims)
}

// Customer returns the signed-in customer, if any.
func Customer(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(customerKey{}).(*auth.Claims)
	return claims, ok && claims != nil
}

// CustomerEmail is the signed-in customer's email, "" for guests.
func CustomerEmail(ctx context.Context) string {
	if claims, ok := Customer(ctx); ok {
		return claims.Email
	}
	return ""
}
