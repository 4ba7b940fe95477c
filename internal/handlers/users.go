package handlers

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Ivan-Lazz/thePayRoll/internal/events"
	"github.com/Ivan-Lazz/thePayRoll/internal/hash"
	"github.com/Ivan-Lazz/thePayRoll/internal/logging"
	"github.com/Ivan-Lazz/thePayRoll/internal/models"
	"github.com/Ivan-Lazz/thePayRoll/internal/response"
	"github.com/Ivan-Lazz/thePayRoll/internal/validate"
)

type UserHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
}

type userRequest struct {
	Firstname string `json:"firstname" form:"firstname"`
	Lastname  string `json:"lastname" form:"lastname"`
	Username  string `json:"username" form:"username"`
	Password  string `json:"password" form:"password"`
	Email     string `json:"email" form:"email"`
	Role      string `json:"role" form:"role"`
	Status    string `json:"status" form:"status"`
}

func (h *UserHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	p := pageParams(c)

	q := h.DB.WithContext(ctx).Model(&models.User{})
	if search := strings.TrimSpace(c.QueryParam("search")); search != "" {
		pat := likePattern(search)
		q = q.Where(
			"firstname LIKE ? OR lastname LIKE ? OR username LIKE ? OR email LIKE ?",
			pat, pat, pat, pat,
		)
	}
	if role := c.QueryParam("role"); role != "" {
		q = q.Where("role = ?", role)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return response.ServerError(c, "")
	}

	var users []models.User
	if err := q.Order("id").Offset(p.Offset()).Limit(p.PerPage).Find(&users).Error; err != nil {
		return response.ServerError(c, "")
	}

	return response.Paginated(c, users, p, total)
}

func (h *UserHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid user ID", nil)
	}

	var user models.User
	if err := h.DB.WithContext(c.Request().Context()).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.ServerError(c, "")
	}
	return response.Success(c, "User retrieved successfully", user)
}

func (h *UserHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req userRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid input", nil)
	}
	if req.Role == "" {
		req.Role = "user"
	}
	if req.Status == "" {
		req.Status = "active"
	}

	v := validate.New(map[string]string{
		"firstname": req.Firstname,
		"lastname":  req.Lastname,
		"username":  req.Username,
		"password":  req.Password,
		"email":     req.Email,
		"role":      req.Role,
		"status":    req.Status,
	}).
		Required("firstname", "lastname", "username", "password").
		MinLength("username", 3).
		Password("password").
		Email("email").
		In("role", "admin", "user").
		In("status", "active", "inactive")
	if !v.Valid() {
		return response.BadRequest(c, "Invalid input", v.Errors())
	}

	var count int64
	if err := h.DB.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", req.Username).Count(&count).Error; err != nil {
		return response.ServerError(c, "")
	}
	if count > 0 {
		return response.BadRequest(c, "Username already exists", nil)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return response.ServerError(c, "")
	}

	user := models.User{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Username:  req.Username,
		Password:  pwHash,
		Email:     req.Email,
		Role:      req.Role,
		Status:    req.Status,
	}
	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		logging.FromContext(ctx).Error("user create failed", "error", err)
		return response.ServerError(c, "")
	}

	h.Producer.Publish(ctx, itoa(user.ID), map[string]interface{}{
		"type":     "user_created",
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
	})

	return response.Created(c, "User created successfully", user)
}

func (h *UserHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid user ID", nil)
	}

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.ServerError(c, "")
	}

	var req userRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid input", nil)
	}

	v := validate.New(map[string]string{
		"password": req.Password,
		"email":    req.Email,
		"role":     req.Role,
		"status":   req.Status,
	}).
		Password("password").
		Email("email").
		In("role", "admin", "user").
		In("status", "active", "inactive")
	if !v.Valid() {
		return response.BadRequest(c, "Invalid input", v.Errors())
	}

	if req.Username != "" && req.Username != user.Username {
		var count int64
		if err := h.DB.WithContext(ctx).Model(&models.User{}).
			Where("username = ? AND id <> ?", req.Username, user.ID).Count(&count).Error; err != nil {
			return response.ServerError(c, "")
		}
		if count > 0 {
			return response.BadRequest(c, "Username already exists", nil)
		}
		user.Username = req.Username
	}

	if req.Firstname != "" {
		user.Firstname = req.Firstname
	}
	if req.Lastname != "" {
		user.Lastname = req.Lastname
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.Status != "" {
		user.Status = req.Status
	}
	// Password only changes when a new one is supplied.
	if req.Password != "" {
		pwHash, err := hash.HashPassword(req.Password)
		if err != nil {
			return response.ServerError(c, "")
		}
		user.Password = pwHash
	}

	if err := h.DB.WithContext(ctx).Save(&user).Error; err != nil {
		logging.FromContext(ctx).Error("user update failed", "error", err)
		return response.ServerError(c, "")
	}

	h.Producer.Publish(ctx, itoa(user.ID), map[string]interface{}{
		"type":    "user_updated",
		"user_id": user.ID,
	})

	return response.Success(c, "User updated successfully", user)
}

func (h *UserHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid user ID", nil)
	}

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.ServerError(c, "")
	}

	// The system must always keep at least one admin account.
	if user.Role == "admin" {
		var admins int64
		if err := h.DB.WithContext(ctx).Model(&models.User{}).
			Where("role = ?", "admin").Count(&admins).Error; err != nil {
			return response.ServerError(c, "")
		}
		if admins <= 1 {
			return response.BadRequest(c, "Cannot delete the last admin user", nil)
		}
	}

	if err := h.DB.WithContext(ctx).Delete(&user).Error; err != nil {
		return response.ServerError(c, "")
	}

	h.Producer.Publish(ctx, itoa(user.ID), map[string]interface{}{
		"type":     "user_deleted",
		"user_id":  user.ID,
		"username": user.Username,
	})

	return response.Success(c, "User deleted successfully", nil)
}
