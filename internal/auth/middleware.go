package auth

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"staybook/internal/booking"
)

type contextKey struct{}

var sessionKey contextKey

// SessionFromContext returns the session placed by the middleware.
func SessionFromContext(ctx context.Context) (booking.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(booking.Session)
	return sess, ok
}

// WithSession is for tests and internal callers that bypass HTTP.
func WithSession(ctx context.Context, sess booking.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// Middleware verifies the bearer token and threads the resulting session
// into the request context. Handlers pass it explicitly into the engine;
// nothing downstream reads ambient auth state.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		sess := booking.Session{}
		if sub, ok := claims["sub"].(string); ok {
			sess.UserID = sub
		}
		if role, ok := claims["role"].(string); ok {
			sess.Role = role
		}
		if sess.UserID == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}
