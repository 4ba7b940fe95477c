package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Ivan-Lazz/thePayRoll/internal/auth"
	"github.com/Ivan-Lazz/thePayRoll/internal/events"
	"github.com/Ivan-Lazz/thePayRoll/internal/hash"
	"github.com/Ivan-Lazz/thePayRoll/internal/logging"
	"github.com/Ivan-Lazz/thePayRoll/internal/models"
	"github.com/Ivan-Lazz/thePayRoll/internal/response"
	"github.com/Ivan-Lazz/thePayRoll/internal/session"
	"github.com/Ivan-Lazz/thePayRoll/internal/token"
	"github.com/Ivan-Lazz/thePayRoll/internal/validate"
)

type AuthHandler struct {
	DB            *gorm.DB
	Gate          *auth.Gate
	Codec         *token.Codec
	CSRF          *token.CSRFIssuer
	Store         *session.Store
	Producer      *events.Producer
	SecureCookies bool
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	// First login on an empty install gets a bootstrap admin account.
	if err := h.ensureInitialUser(ctx); err != nil {
		l.Error("initial user bootstrap failed", "error", err)
	}

	var req struct {
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid input", nil)
	}

	v := validate.New(map[string]string{
		"username": req.Username,
		"password": req.Password,
	}).Required("username", "password")
	if !v.Valid() {
		return response.BadRequest(c, "Invalid input", v.Errors())
	}

	var user models.User
	if err := h.DB.WithContext(ctx).Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Unauthorized(c, "Invalid username or password")
		}
		l.Error("login lookup failed", "error", err)
		return response.ServerError(c, "")
	}

	if user.Status != "active" {
		return response.Unauthorized(c, "Your account is not active")
	}

	if !hash.CheckPassword(user.Password, req.Password) {
		return response.Unauthorized(c, "Invalid username or password")
	}

	bearer, err := h.Codec.Issue(map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
	})
	if err != nil {
		l.Error("token issue failed", "error", err)
		return response.ServerError(c, "")
	}

	sess := h.Store.Create(session.Identity{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	csrfEntry := h.CSRF.Issue()
	h.Store.SetCSRF(sess.ID, csrfEntry)

	c.SetCookie(session.NewCookie(sess.ID, h.Gate.Timeout, h.SecureCookies))

	h.publish(c, user.ID, map[string]interface{}{
		"type":     "user_logged_in",
		"user_id":  user.ID,
		"username": user.Username,
	})

	l.Info("login successful", "username", user.Username)
	return response.Success(c, "Login successful", echo.Map{
		"token":      bearer,
		"csrf_token": csrfEntry.Token,
		"user":       user,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	user := h.Gate.CurrentUser(c)

	h.Gate.ClearSession(c)
	c.SetCookie(session.DeleteCookie(h.SecureCookies))

	if !user.Empty() {
		h.publish(c, user.ID, map[string]interface{}{
			"type":     "user_logged_out",
			"user_id":  user.ID,
			"username": user.Username,
		})
	}

	return response.Success(c, "Logout successful", nil)
}

// Refresh re-issues a bearer token and, for session callers, a new CSRF
// token. It requires a currently valid channel.
func (h *AuthHandler) Refresh(c echo.Context) error {
	if !h.Gate.IsAuthenticated(c) {
		return response.Unauthorized(c, "Authentication required")
	}

	user := h.Gate.CurrentUser(c)
	bearer, err := h.Codec.Issue(map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
	})
	if err != nil {
		return response.ServerError(c, "")
	}

	csrfToken := ""
	if sess := h.Gate.CurrentSession(c); sess != nil {
		entry := h.CSRF.Issue()
		h.Store.SetCSRF(sess.ID, entry)
		csrfToken = entry.Token
	}

	return response.Success(c, "Token refreshed", echo.Map{
		"token":      bearer,
		"csrf_token": csrfToken,
		"expires_in": int(h.Codec.TTL / time.Second),
	})
}

func (h *AuthHandler) Check(c echo.Context) error {
	if !h.Gate.IsAuthenticated(c) {
		return response.Unauthorized(c, "Not authenticated")
	}
	return response.Success(c, "Authenticated", h.Gate.CurrentUser(c))
}

func (h *AuthHandler) ensureInitialUser(ctx context.Context) error {
	var count int64
	if err := h.DB.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	pwHash, err := hash.HashPassword("Admin@123")
	if err != nil {
		return err
	}
	admin := models.User{
		Firstname: "Admin",
		Lastname:  "User",
		Username:  "admin",
		Password:  pwHash,
		Email:     "admin@example.com",
		Role:      "admin",
		Status:    "active",
	}
	if err := h.DB.WithContext(ctx).Create(&admin).Error; err != nil {
		return err
	}
	logging.FromContext(ctx).Info("initial admin user created", "username", admin.Username)
	return nil
}

func (h *AuthHandler) publish(c echo.Context, userID uint, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Producer.Publish(ctx, itoa(userID), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("event publish failed", "error", err)
	}
}
