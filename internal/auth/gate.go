package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/aTrapDeer/portfolio-cms/internal/errs"
	"github.com/aTrapDeer/portfolio-cms/internal/httpx"
	"github.com/aTrapDeer/portfolio-cms/internal/models"
)

// SessionCookie carries the token for browser sessions (admin UI).
const SessionCookie = "session"

// LoginPath is where unauthenticated admin page requests are sent.
const LoginPath = "/admin/login"

type ctxKey struct{}

// Identity is the authenticated caller.
type Identity struct {
	UserID uint   `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role"`
}

// Decision is the outcome of Gate.Authorize.
type Decision struct {
	Granted  bool
	Identity *Identity
}

// UserFinder resolves the user behind a session.
type UserFinder interface {
	Get(ctx context.Context, id uint) (*models.User, error)
}

// Gate decides whether a session may perform admin writes.
type Gate struct {
	tokens *Tokens
	users  UserFinder
}

func NewGate(tokens *Tokens, users UserFinder) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// Authorize grants only a valid, unexpired token whose user still exists and
// has the ADMIN role. It has no side effects. The error is set only when the
// user lookup fails for another reason than a missing user.
func (g *Gate) Authorize(ctx context.Context, token string) (Decision, error) {
	if token == "" {
		return Decision{}, nil
	}
	claims, err := g.tokens.Parse(token)
	if err != nil {
		return Decision{}, nil
	}
	uid, err := claims.UserID()
	if err != nil {
		return Decision{}, nil
	}
	u, err := g.users.Get(ctx, uid)
	if errors.Is(err, errs.ErrNotFound) {
		return Decision{}, nil
	}
	if err != nil {
		return Decision{}, err
	}
	id := &Identity{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
	return Decision{Granted: u.IsAdmin(), Identity: id}, nil
}

// IsAdmin reports whether the request carries an admin session.
func (g *Gate) IsAdmin(r *http.Request) (bool, error) {
	d, err := g.Authorize(r.Context(), TokenFromRequest(r))
	return d.Granted, err
}

// RequireAdmin rejects the request with 401 unless it carries an admin
// session; the identity is passed on in the request context.
func (g *Gate) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, err := g.Authorize(r.Context(), TokenFromRequest(r))
		if err != nil {
			httpx.Fail(w, r, err)
			return
		}
		if !d.Granted {
			httpx.Fail(w, r, errs.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), d.Identity)))
	})
}

// AdminPages is RequireAdmin for browser pages: it redirects to the login page.
func (g *Gate) AdminPages(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, err := g.Authorize(r.Context(), TokenFromRequest(r))
		if err != nil {
			log.Printf("%s %s: authorize: %v", r.Method, r.URL.Path, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !d.Granted {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), d.Identity)))
	})
}

// TokenFromRequest reads a bearer token, falling back to the session cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// WithIdentity stores the caller in ctx.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFromContext returns the caller set by RequireAdmin or AdminPages.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(*Identity)
	return id, ok && id != nil
}

// SetSessionCookie stores token in an HttpOnly cookie.
func SetSessionCookie(w http.ResponseWriter, token string, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie deletes the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
