// Package auth decides whether a request is allowed through and who the
// caller is. Two independent channels are accepted: a server-side session
// identified by cookie, or a self-contained bearer token. The session is
// always tried first.
package auth

import (
	"regexp"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Ivan-Lazz/thePayRoll/internal/response"
	"github.com/Ivan-Lazz/thePayRoll/internal/session"
	"github.com/Ivan-Lazz/thePayRoll/internal/token"
)

var bearerRe = regexp.MustCompile(`Bearer\s(\S+)`)

type Gate struct {
	Store   *session.Store
	Codec   *token.Codec
	Timeout time.Duration

	Now func() time.Time
}

func NewGate(store *session.Store, codec *token.Codec, sessionTimeoutSeconds int) *Gate {
	return &Gate{
		Store:   store,
		Codec:   codec,
		Timeout: time.Duration(sessionTimeoutSeconds) * time.Second,
	}
}

func (g *Gate) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// CurrentSession resolves the session cookie to a live session, or nil.
func (g *Gate) CurrentSession(c echo.Context) *session.Session {
	cookie, err := c.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	return g.Store.Get(cookie.Value)
}

// BearerToken extracts the token from the Authorization header, or "".
func BearerToken(c echo.Context) string {
	m := bearerRe.FindStringSubmatch(c.Request().Header.Get(echo.HeaderAuthorization))
	if m == nil {
		return ""
	}
	return m[1]
}

// IsAuthenticated tries the session channel, then the bearer channel.
// An idle-expired session is destroyed on the spot; a live one gets its
// last-activity refreshed.
func (g *Gate) IsAuthenticated(c echo.Context) bool {
	if sess := g.CurrentSession(c); sess != nil {
		if g.now().Sub(sess.LastActivity) > g.Timeout {
			g.Store.Destroy(sess.ID)
			return false
		}
		g.Store.Touch(sess.ID)
		return true
	}

	if raw := BearerToken(c); raw != "" {
		if _, err := g.Codec.Verify(raw); err == nil {
			return true
		}
	}

	return false
}

// CurrentUser prefers session identity and falls back to bearer claims.
// A zero Identity means the request is unauthenticated.
func (g *Gate) CurrentUser(c echo.Context) session.Identity {
	if sess := g.CurrentSession(c); sess != nil {
		return sess.User
	}

	if raw := BearerToken(c); raw != "" {
		claims, err := g.Codec.Verify(raw)
		if err != nil {
			return session.Identity{}
		}
		ident := session.Identity{}
		if id, ok := claims["user_id"].(float64); ok {
			ident.ID = uint(id)
		}
		if username, ok := claims["username"].(string); ok {
			ident.Username = username
		}
		if role, ok := claims["role"].(string); ok {
			ident.Role = role
		}
		return ident
	}

	return session.Identity{}
}

func (g *Gate) HasRole(c echo.Context, roles ...string) bool {
	user := g.CurrentUser(c)
	if user.Empty() || user.Role == "" {
		return false
	}
	for _, r := range roles {
		if user.Role == r {
			return true
		}
	}
	return false
}

// RequireAuth is a control-flow barrier: on failure the 401 envelope is the
// response and the handler never runs.
func (g *Gate) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !g.IsAuthenticated(c) {
			return response.Unauthorized(c, "Authentication required")
		}
		return next(c)
	}
}

// RequireRole chains the auth barrier with a role check.
func (g *Gate) RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !g.IsAuthenticated(c) {
				return response.Unauthorized(c, "Authentication required")
			}
			if !g.HasRole(c, roles...) {
				return response.Forbidden(c, "You do not have permission to access this resource")
			}
			return next(c)
		}
	}
}

// ClearSession destroys the caller's session if one exists.
func (g *Gate) ClearSession(c echo.Context) {
	if sess := g.CurrentSession(c); sess != nil {
		g.Store.Destroy(sess.ID)
	}
}
