package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/adityar/secrets-wall/internal/auth"
	"github.com/adityar/secrets-wall/internal/models"
)

type ctxKey int

const userKey ctxKey = 0

// UserFetcher loads a user by id for session resolution.
type UserFetcher interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// CurrentUser returns the authenticated user attached to the request
// context, or nil for anonymous requests.
func CurrentUser(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// WithUser attaches a user to the context. Exported for handler tests.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// LoadUser resolves the session cookie on every request and attaches the
// corresponding user to the context. An absent, invalid or expired session
// simply leaves the request anonymous.
func LoadUser(sessions auth.Sessions, users UserFetcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookie)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := sessions.Get(r.Context(), cookie.Value)
			if err != nil || userID == "" {
				if err != nil {
					log.Printf("session lookup: %v", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				log.Printf("session user fetch: %v", err)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireAuth redirects anonymous requests to the login page.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
