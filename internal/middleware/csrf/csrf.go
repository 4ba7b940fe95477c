// Package csrf guards state-changing, cookie-authenticated requests with a
// session-bound anti-forgery token. Bearer-token clients are exempt: they
// are not browsers and carry no ambient cookie credentials.
package csrf

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Ivan-Lazz/thePayRoll/internal/response"
	"github.com/Ivan-Lazz/thePayRoll/internal/session"
	"github.com/Ivan-Lazz/thePayRoll/internal/token"
)

type Config struct {
	HeaderName string
	FormField  string

	Store  *session.Store
	Issuer *token.CSRFIssuer
}

func DefaultConfig() Config {
	return Config{
		HeaderName: "X-CSRF-Token",
		FormField:  "csrf_token",
	}
}

func Middleware(cfg Config) echo.MiddlewareFunc {
	def := DefaultConfig()
	if cfg.HeaderName == "" {
		cfg.HeaderName = def.HeaderName
	}
	if cfg.FormField == "" {
		cfg.FormField = def.FormField
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			// API clients authenticating with a bearer token are exempt,
			// even if the token itself later fails verification.
			if strings.HasPrefix(req.Header.Get(echo.HeaderAuthorization), "Bearer ") {
				return next(c)
			}

			candidate := findToken(c, cfg)
			if candidate == "" {
				return response.Forbidden(c, "CSRF token validation failed")
			}

			sess := currentSession(c, cfg.Store)
			if sess == nil || !cfg.Issuer.Valid(sess.CSRF, candidate) {
				return response.Forbidden(c, "CSRF token validation failed")
			}

			return next(c)
		}
	}
}

func currentSession(c echo.Context, store *session.Store) *session.Session {
	cookie, err := c.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	return store.Get(cookie.Value)
}

// findToken checks, in order: form-encoded body field, dedicated header,
// JSON body field. First non-empty hit wins.
func findToken(c echo.Context, cfg Config) string {
	req := c.Request()

	ct := req.Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ct, echo.MIMEApplicationForm) || strings.HasPrefix(ct, echo.MIMEMultipartForm) {
		if v := c.FormValue(cfg.FormField); v != "" {
			return v
		}
	}

	if v := req.Header.Get(cfg.HeaderName); v != "" {
		return v
	}

	if strings.HasPrefix(ct, echo.MIMEApplicationJSON) && req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err == nil {
			// rewind so the handler can still bind the body
			req.Body = io.NopCloser(bytes.NewReader(body))
			var fields map[string]json.RawMessage
			if json.Unmarshal(body, &fields) == nil {
				var v string
				if raw, ok := fields[cfg.FormField]; ok && json.Unmarshal(raw, &v) == nil {
					return v
				}
			}
		}
	}

	return ""
}
