package handlers

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Ivan-Lazz/thePayRoll/internal/events"
	"github.com/Ivan-Lazz/thePayRoll/internal/logging"
	"github.com/Ivan-Lazz/thePayRoll/internal/models"
	"github.com/Ivan-Lazz/thePayRoll/internal/response"
	"github.com/Ivan-Lazz/thePayRoll/internal/validate"
)

type BankingHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
}

type bankingRequest struct {
	EmployeeID        string `json:"employee_id" form:"employee_id"`
	PreferredBank     string `json:"preferred_bank" form:"preferred_bank"`
	BankAccountNumber string `json:"bank_account_number" form:"bank_account_number"`
	BankAccountName   string `json:"bank_account_name" form:"bank_account_name"`
}

func (h *BankingHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	p := pageParams(c)

	q := h.DB.WithContext(ctx).Model(&models.BankingDetail{})
	if search := strings.TrimSpace(c.QueryParam("search")); search != "" {
		pat := likePattern(search)
		q = q.Where(
			"employee_id LIKE ? OR preferred_bank LIKE ? OR bank_account_number LIKE ? OR bank_account_name LIKE ?",
			pat, pat, pat, pat,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return response.ServerError(c, "")
	}

	var details []models.BankingDetail
	if err := q.Order("id").Offset(p.Offset()).Limit(p.PerPage).Find(&details).Error; err != nil {
		return response.ServerError(c, "")
	}

	return response.Paginated(c, details, p, total)
}

func (h *BankingHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid banking detail ID", nil)
	}

	var detail models.BankingDetail
	if err := h.DB.WithContext(c.Request().Context()).First(&detail, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Banking detail not found")
		}
		return response.ServerError(c, "")
	}
	return response.Success(c, "Banking detail retrieved successfully", detail)
}

// ByEmployee lists all banking details for an employee ID.
func (h *BankingHandler) ByEmployee(c echo.Context) error {
	ctx := c.Request().Context()
	employeeID := c.Param("id")

	var count int64
	if err := h.DB.WithContext(ctx).Model(&models.Employee{}).
		Where("employee_id = ?", employeeID).Count(&count).Error; err != nil {
		return response.ServerError(c, "")
	}
	if count == 0 {
		return response.NotFound(c, "Employee not found")
	}

	var details []models.BankingDetail
	if err := h.DB.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("id").Find(&details).Error; err != nil {
		return response.ServerError(c, "")
	}
	return response.Success(c, "Banking details retrieved successfully", details)
}

func (h *BankingHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req bankingRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid input", nil)
	}

	v := validate.New(map[string]string{
		"employee_id":         req.EmployeeID,
		"preferred_bank":      req.PreferredBank,
		"bank_account_number": req.BankAccountNumber,
		"bank_account_name":   req.BankAccountName,
	}).Required("employee_id", "preferred_bank", "bank_account_number", "bank_account_name")
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

	detail := models.BankingDetail{
		EmployeeID:        req.EmployeeID,
		PreferredBank:     req.PreferredBank,
		BankAccountNumber: req.BankAccountNumber,
		BankAccountName:   req.BankAccountName,
	}
	if err := h.DB.WithContext(ctx).Create(&detail).Error; err != nil {
		logging.FromContext(ctx).Error("banking detail create failed", "error", err)
		return response.ServerError(c, "")
	}

	h.Producer.Publish(ctx, detail.EmployeeID, map[string]interface{}{
		"type":              "banking_detail_created",
		"banking_detail_id": detail.ID,
		"employee_id":       detail.EmployeeID,
	})

	return response.Created(c, "Banking detail created successfully", detail)
}

func (h *BankingHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid banking detail ID", nil)
	}

	var detail models.BankingDetail
	if err := h.DB.WithContext(ctx).First(&detail, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Banking detail not found")
		}
		return response.ServerError(c, "")
	}

	var req bankingRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid input", nil)
	}

	if req.EmployeeID != "" && req.EmployeeID != detail.EmployeeID {
		var count int64
		if err := h.DB.WithContext(ctx).Model(&models.Employee{}).
			Where("employee_id = ?", req.EmployeeID).Count(&count).Error; err != nil {
			return response.ServerError(c, "")
		}
		if count == 0 {
			return response.BadRequest(c, "Employee does not exist", nil)
		}
		detail.EmployeeID = req.EmployeeID
	}

	if req.PreferredBank != "" {
		detail.PreferredBank = req.PreferredBank
	}
	if req.BankAccountNumber != "" {
		detail.BankAccountNumber = req.BankAccountNumber
	}
	if req.BankAccountName != "" {
		detail.BankAccountName = req.BankAccountName
	}

	if err := h.DB.WithContext(ctx).Save(&detail).Error; err != nil {
		logging.FromContext(ctx).Error("banking detail update failed", "error", err)
		return response.ServerError(c, "")
	}

	h.Producer.Publish(ctx, detail.EmployeeID, map[string]interface{}{
		"type":              "banking_detail_updated",
		"banking_detail_id": detail.ID,
	})

	return response.Success(c, "Banking detail updated successfully", detail)
}

func (h *BankingHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid banking detail ID", nil)
	}

	var detail models.BankingDetail
	if err := h.DB.WithContext(ctx).First(&detail, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Banking detail not found")
		}
		return response.ServerError(c, "")
	}

	if err := h.DB.WithContext(ctx).Delete(&detail).Error; err != nil {
		return response.ServerError(c, "")
	}

	h.Producer.Publish(ctx, detail.EmployeeID, map[string]interface{}{
		"type":              "banking_detail_deleted",
		"banking_detail_id": detail.ID,
	})

	return response.Success(c, "Banking detail deleted successfully", nil)
}
