package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Ivan-Lazz/thePayRoll/internal/events"
	"github.com/Ivan-Lazz/thePayRoll/internal/logging"
	"github.com/Ivan-Lazz/thePayRoll/internal/models"
	"github.com/Ivan-Lazz/thePayRoll/internal/response"
	"github.com/Ivan-Lazz/thePayRoll/internal/validate"
)

type EmployeeHandler struct {
	DB       *gorm.DB
	Producer *events.Producer

	Now func() time.Time
}

type employeeRequest struct {
	Firstname     string `json:"firstname" form:"firstname"`
	Lastname      string `json:"lastname" form:"lastname"`
	ContactNumber string `json:"contact_number" form:"contact_number"`
	Email         string `json:"email" form:"email"`
}

func (h *EmployeeHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	p := pageParams(c)

	q := h.DB.WithContext(ctx).Model(&models.Employee{})
	if search := strings.TrimSpace(c.QueryParam("search")); search != "" {
		pat := likePattern(search)
		q = q.Where(
			"employee_id LIKE ? OR firstname LIKE ? OR lastname LIKE ? OR email LIKE ? OR contact_number LIKE ?",
			pat, pat, pat, pat, pat,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return response.ServerError(c, "")
	}

	var employees []models.Employee
	if err := q.Order("employee_id").Offset(p.Offset()).Limit(p.PerPage).Find(&employees).Error; err != nil {
		return response.ServerError(c, "")
	}

	return response.Paginated(c, employees, p, total)
}

func (h *EmployeeHandler) Get(c echo.Context) error {
	employee, err := h.find(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Employee not found")
		}
		return response.ServerError(c, "")
	}
	return response.Success(c, "Employee retrieved successfully", employee)
}

func (h *EmployeeHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req employeeRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid input", nil)
	}

	v := validate.New(map[string]string{
		"firstname":      req.Firstname,
		"lastname":       req.Lastname,
		"contact_number": req.ContactNumber,
		"email":          req.Email,
	}).
		Required("firstname", "lastname").
		Email("email")
	if !v.Valid() {
		return response.BadRequest(c, "Invalid input", v.Errors())
	}

	employee := models.Employee{
		Firstname:     req.Firstname,
		Lastname:      req.Lastname,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
	}

	// The generated ID can race with a concurrent insert; retry on the
	// primary key conflict.
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		employee.EmployeeID, err = h.nextEmployeeID(ctx)
		if err != nil {
			return response.ServerError(c, "")
		}
		err = h.DB.WithContext(ctx).Create(&employee).Error
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			logging.FromContext(ctx).Error("employee create failed", "error", err)
			return response.ServerError(c, "")
		}
	}
	if err != nil {
		return response.ServerError(c, "")
	}

	h.Producer.Publish(ctx, employee.EmployeeID, map[string]interface{}{
		"type":        "employee_created",
		"employee_id": employee.EmployeeID,
	})

	return response.Created(c, "Employee created successfully", employee)
}

func (h *EmployeeHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	employee, err := h.find(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Employee not found")
		}
		return response.ServerError(c, "")
	}

	var req employeeRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid input", nil)
	}

	v := validate.New(map[string]string{"email": req.Email}).Email("email")
	if !v.Valid() {
		return response.BadRequest(c, "Invalid input", v.Errors())
	}

	if req.Firstname != "" {
		employee.Firstname = req.Firstname
	}
	if req.Lastname != "" {
		employee.Lastname = req.Lastname
	}
	if req.ContactNumber != "" {
		employee.ContactNumber = req.ContactNumber
	}
	if req.Email != "" {
		employee.Email = req.Email
	}

	if err := h.DB.WithContext(ctx).Save(employee).Error; err != nil {
		logging.FromContext(ctx).Error("employee update failed", "error", err)
		return response.ServerError(c, "")
	}

	h.Producer.Publish(ctx, employee.EmployeeID, map[string]interface{}{
		"type":        "employee_updated",
		"employee_id": employee.EmployeeID,
	})

	return response.Success(c, "Employee updated successfully", employee)
}

func (h *EmployeeHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	employee, err := h.find(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Employee not found")
		}
		return response.ServerError(c, "")
	}

	if err := h.DB.WithContext(ctx).Delete(employee).Error; err != nil {
		return response.ServerError(c, "")
	}

	h.Producer.Publish(ctx, employee.EmployeeID, map[string]interface{}{
		"type":        "employee_deleted",
		"employee_id": employee.EmployeeID,
	})

	return response.Success(c, "Employee deleted successfully", nil)
}

// Accounts lists the platform accounts registered for one employee.
func (h *EmployeeHandler) Accounts(c echo.Context) error {
	ctx := c.Request().Context()

	employee, err := h.find(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Employee not found")
		}
		return response.ServerError(c, "")
	}

	var accounts []models.EmployeeAccount
	if err := h.DB.WithContext(ctx).
		Where("employee_id = ?", employee.EmployeeID).
		Order("account_id").Find(&accounts).Error; err != nil {
		return response.ServerError(c, "")
	}
	return response.Success(c, "Accounts retrieved successfully", accounts)
}

// Banking lists the banking details registered for one employee.
func (h *EmployeeHandler) Banking(c echo.Context) error {
	ctx := c.Request().Context()

	employee, err := h.find(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Employee not found")
		}
		return response.ServerError(c, "")
	}

	var details []models.BankingDetail
	if err := h.DB.WithContext(ctx).
		Where("employee_id = ?", employee.EmployeeID).
		Order("id").Find(&details).Error; err != nil {
		return response.ServerError(c, "")
	}
	return response.Success(c, "Banking details retrieved successfully", details)
}

func (h *EmployeeHandler) find(ctx context.Context, id string) (*models.Employee, error) {
	var employee models.Employee
	err := h.DB.WithContext(ctx).Where("employee_id = ?", id).First(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

// nextEmployeeID produces year-prefixed IDs like 202600001, restarting the
// counter each calendar year.
func (h *EmployeeHandler) nextEmployeeID(ctx context.Context) (string, error) {
	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	year := now.Format("2006")

	var last string
	err := h.DB.WithContext(ctx).Model(&models.Employee{}).
		Where("employee_id LIKE ?", year+"%").
		Select("employee_id").
		Order("employee_id DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil {
		return "", err
	}

	seq := 1
	if len(last) == len(year)+5 {
		if n, err := strconv.Atoi(last[len(year):]); err == nil {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%05d", year, seq), nil
}
