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

type AccountHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
}

type accountRequest struct {
	EmployeeID      string `json:"employee_id" form:"employee_id"`
	AccountEmail    string `json:"account_email" form:"account_email"`
	AccountPassword string `json:"account_password" form:"account_password"`
	AccountType     string `json:"account_type" form:"account_type"`
	AccountStatus   string `json:"account_status" form:"account_status"`
}

// accountRow is the list projection: account columns plus the owning
// employee's name.
type accountRow struct {
	models.EmployeeAccount
	Firstname string `json:"-"`
	Lastname  string `json:"-"`
}

type accountView struct {
	models.EmployeeAccount
	EmployeeName string `json:"employee_name"`
}

func (h *AccountHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	p := pageParams(c)

	q := h.DB.WithContext(ctx).Model(&models.EmployeeAccount{}).
		Joins("LEFT JOIN employees ON employees.employee_id = employee_accounts.employee_id")

	if search := strings.TrimSpace(c.QueryParam("search")); search != "" {
		pat := likePattern(search)
		q = q.Where(
			"employee_accounts.employee_id LIKE ? OR account_email LIKE ? OR employees.firstname LIKE ? OR employees.lastname LIKE ?",
			pat, pat, pat, pat,
		)
	}
	if t := c.QueryParam("account_type"); t != "" {
		q = q.Where("account_type = ?", t)
	}
	if s := c.QueryParam("account_status"); s != "" {
		q = q.Where("account_status = ?", s)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return response.ServerError(c, "")
	}

	var rows []accountRow
	if err := q.Select("employee_accounts.*, employees.firstname, employees.lastname").
		Order("employee_accounts.account_id").
		Offset(p.Offset()).Limit(p.PerPage).
		Scan(&rows).Error; err != nil {
		return response.ServerError(c, "")
	}

	views := make([]accountView, 0, len(rows))
	for _, r := range rows {
		views = append(views, accountView{
			EmployeeAccount: r.EmployeeAccount,
			EmployeeName:    strings.TrimSpace(r.Firstname + " " + r.Lastname),
		})
	}
	return response.Paginated(c, views, p, total)
}

func (h *AccountHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid account ID", nil)
	}

	var account models.EmployeeAccount
	if err := h.DB.WithContext(c.Request().Context()).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Account not found")
		}
		return response.ServerError(c, "")
	}
	return response.Success(c, "Account retrieved successfully", account)
}

func (h *AccountHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req accountRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid input", nil)
	}
	if req.AccountStatus == "" {
		req.AccountStatus = "ACTIVE"
	}

	v := validate.New(map[string]string{
		"employee_id":      req.EmployeeID,
		"account_email":    req.AccountEmail,
		"account_password": req.AccountPassword,
		"account_type":     req.AccountType,
		"account_status":   req.AccountStatus,
	}).
		Required("employee_id", "account_email", "account_password", "account_type").
		Email("account_email").
		In("account_type", models.AccountTypes()...).
		In("account_status", models.AccountStatuses()...)
	if !v.Valid() {
		return response.BadRequest(c, "Invalid input", v.Errors())
	}

	var count int64
	if err := h.DB.WithContext(ctx).Model(&models.Employee{}).
		Where("employee_id = ?", req.EmployeeID).Count(&count).Error; err != nil {
		return response.ServerError(c, "")
	}
	if count == 0 {
		return response.BadRequest(c, "Employee does not exist", nil)
	}

	pwHash, err := hash.HashPassword(req.AccountPassword)
	if err != nil {
		return response.ServerError(c, "")
	}

	account := models.EmployeeAccount{
		EmployeeID:      req.EmployeeID,
		AccountEmail:    req.AccountEmail,
		AccountPassword: pwHash,
		AccountType:     req.AccountType,
		AccountStatus:   req.AccountStatus,
	}
	if err := h.DB.WithContext(ctx).Create(&account).Error; err != nil {
		logging.FromContext(ctx).Error("account create failed", "error", err)
		return response.ServerError(c, "")
	}

	h.Producer.Publish(ctx, req.EmployeeID, map[string]interface{}{
		"type":        "account_created",
		"account_id":  account.AccountID,
		"employee_id": account.EmployeeID,
	})

	return response.Created(c, "Account created successfully", account)
}

func (h *AccountHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid account ID", nil)
	}

	var account models.EmployeeAccount
	if err := h.DB.WithContext(ctx).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Account not found")
		}
		return response.ServerError(c, "")
	}

	var req accountRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid input", nil)
	}

	v := validate.New(map[string]string{
		"account_email":  req.AccountEmail,
		"account_type":   req.AccountType,
		"account_status": req.AccountStatus,
	}).
		Email("account_email").
		In("account_type", models.AccountTypes()...).
		In("account_status", models.AccountStatuses()...)
	if !v.Valid() {
		return response.BadRequest(c, "Invalid input", v.Errors())
	}

	if req.EmployeeID != "" && req.EmployeeID != account.EmployeeID {
		var count int64
		if err := h.DB.WithContext(ctx).Model(&models.Employee{}).
			Where("employee_id = ?", req.EmployeeID).Count(&count).Error; err != nil {
			return response.ServerError(c, "")
		}
		if count == 0 {
			return response.BadRequest(c, "Employee does not exist", nil)
		}
		account.EmployeeID = req.EmployeeID
	}

	if req.AccountEmail != "" {
		account.AccountEmail = req.AccountEmail
	}
	if req.AccountType != "" {
		account.AccountType = req.AccountType
	}
	if req.AccountStatus != "" {
		account.AccountStatus = req.AccountStatus
	}
	if req.AccountPassword != "" {
		pwHash, err := hash.HashPassword(req.AccountPassword)
		if err != nil {
			return response.ServerError(c, "")
		}
		account.AccountPassword = pwHash
	}

	if err := h.DB.WithContext(ctx).Save(&account).Error; err != nil {
		logging.FromContext(ctx).Error("account update failed", "error", err)
		return response.ServerError(c, "")
	}

	h.Producer.Publish(ctx, account.EmployeeID, map[string]interface{}{
		"type":       "account_updated",
		"account_id": account.AccountID,
	})

	return response.Success(c, "Account updated successfully", account)
}

func (h *AccountHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid account ID", nil)
	}

	var account models.EmployeeAccount
	if err := h.DB.WithContext(ctx).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Account not found")
		}
		return response.ServerError(c, "")
	}

	if err := h.DB.WithContext(ctx).Delete(&account).Error; err != nil {
		return response.ServerError(c, "")
	}

	h.Producer.Publish(ctx, account.EmployeeID, map[string]interface{}{
		"type":       "account_deleted",
		"account_id": account.AccountID,
	})

	return response.Success(c, "Account deleted successfully", nil)
}

func (h *AccountHandler) Types(c echo.Context) error {
	return response.Success(c, "Account types retrieved successfully", models.AccountTypes())
}

func (h *AccountHandler) Statuses(c echo.Context) error {
	return response.Success(c, "Account statuses retrieved successfully", models.AccountStatuses())
}
