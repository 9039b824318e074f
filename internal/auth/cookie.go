package auth

import (
	"net/http"
	"time"

	"github.com/taskdeck/taskdeck/internal/types"
)

type CookieSettings struct {
	Domain string
	Secure bool
}

// Session returns the cookie that carries a freshly issued token.
func (c CookieSettings) Session(token string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     types.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   int(ttl.Seconds()),
		Secure:   c.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

// Cleared returns a cookie that makes the browser drop the session.
func (c CookieSettings) Cleared() *http.Cookie {
	return &http.Cookie{
		Name:     types.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   -1,
		Secure:   c.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}
