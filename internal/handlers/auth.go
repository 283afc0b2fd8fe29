package handlers

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aTrapDeer/portfolio-cms/internal/auth"
	"github.com/aTrapDeer/portfolio-cms/internal/errs"
	"github.com/aTrapDeer/portfolio-cms/internal/httpx"
	"github.com/aTrapDeer/portfolio-cms/internal/models"
	"github.com/aTrapDeer/portfolio-cms/internal/schema"
)

// UserFinder looks up accounts by email.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// Auth serves login, logout and the current identity. Browser forms get
// redirects; JSON clients get the envelope.
type Auth struct {
	Users        UserFinder
	Tokens       *auth.Tokens
	Limiter      *auth.Limiter
	CookieSecure bool
}

type session struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	User      *auth.Identity `json:"user"`
}

func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	form := isForm(r)
	fail := func(err error) {
		if form {
			reason := "invalid"
			if errors.Is(err, errs.ErrTooManyAttempts) {
				reason = "throttled"
			}
			http.Redirect(w, r, auth.LoginPath+"?error="+url.QueryEscape(reason), http.StatusSeeOther)
			return
		}
		httpx.Fail(w, r, err)
	}

	var in schema.LoginInput
	if form {
		email, password := r.PostFormValue("email"), r.PostFormValue("password")
		in = schema.LoginInput{Email: &email, Password: &password}
		if err := schema.Validate(&in, schema.Create); err != nil {
			fail(err)
			return
		}
	} else if err := schema.Decode(http.MaxBytesReader(w, r.Body, maxBody), &in, schema.Create); err != nil {
		fail(err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(*in.Email))
	key := email + "|" + clientIP(r)
	if !h.Limiter.Allow(key) {
		log.Printf("login throttled for %s", email)
		fail(errs.ErrTooManyAttempts)
		return
	}

	u, err := h.Users.FindByEmail(r.Context(), email)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		fail(err)
		return
	}
	if u == nil || !auth.CheckPassword(u.Password, *in.Password) {
		h.Limiter.Fail(key)
		fail(errs.ErrUnauthorized)
		return
	}
	h.Limiter.Reset(key)

	token, exp, err := h.Tokens.Issue(u)
	if err != nil {
		fail(err)
		return
	}
	auth.SetSessionCookie(w, token, exp, h.CookieSecure)
	if form {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	httpx.OK(w, session{
		Token:     token,
		ExpiresAt: exp,
		User:      &auth.Identity{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role},
	})
}

func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.CookieSecure)
	if isForm(r) {
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return
	}
	httpx.OK(w, map[string]bool{"loggedOut": true})
}

// Me returns the identity attached by the gate.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.Fail(w, r, errs.ErrUnauthorized)
		return
	}
	httpx.OK(w, id)
}

func isForm(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data")
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
