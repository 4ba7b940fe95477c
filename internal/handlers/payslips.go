package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Ivan-Lazz/thePayRoll/internal/events"
	"github.com/Ivan-Lazz/thePayRoll/internal/logging"
	"github.com/Ivan-Lazz/thePayRoll/internal/models"
	"github.com/Ivan-Lazz/thePayRoll/internal/pdf"
	"github.com/Ivan-Lazz/thePayRoll/internal/response"
	"github.com/Ivan-Lazz/thePayRoll/internal/validate"
)

type PayslipHandler struct {
	DB       *gorm.DB
	PDF      *pdf.Generator
	Producer *events.Producer
}

type payslipRequest struct {
	EmployeeID     string   `json:"employee_id" form:"employee_id"`
	BankAccountID  uint     `json:"bank_account_id" form:"bank_account_id"`
	Salary         *float64 `json:"salary" form:"salary"`
	Bonus          *float64 `json:"bonus" form:"bonus"`
	PersonInCharge string   `json:"person_in_charge" form:"person_in_charge"`
	CutoffDate     string   `json:"cutoff_date" form:"cutoff_date"`
	PaymentDate    string   `json:"payment_date" form:"payment_date"`
	PaymentStatus  string   `json:"payment_status" form:"payment_status"`
}

type payslipRow struct {
	models.Payslip
	Firstname         string `json:"-"`
	Lastname          string `json:"-"`
	PreferredBank     string `json:"-"`
	BankAccountNumber string `json:"-"`
	BankAccountName   string `json:"-"`
}

type payslipView struct {
	models.Payslip
	EmployeeName string           `json:"employee_name"`
	BankDetails  *payslipBankView `json:"bank_details,omitempty"`
}

type payslipBankView struct {
	PreferredBank     string `json:"preferred_bank"`
	BankAccountNumber string `json:"bank_account_number"`
	BankAccountName   string `json:"bank_account_name"`
}

func (h *PayslipHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	p := pageParams(c)

	q := h.listQuery(ctx)
	if search := strings.TrimSpace(c.QueryParam("search")); search != "" {
		pat := likePattern(search)
		q = q.Where(
			"payslip_no LIKE ? OR payslips.employee_id LIKE ? OR employees.firstname LIKE ? OR employees.lastname LIKE ? OR person_in_charge LIKE ?",
			pat, pat, pat, pat, pat,
		)
	}
	if status := c.QueryParam("payment_status"); status != "" {
		q = q.Where("payment_status = ?", status)
	}
	if start := c.QueryParam("start_date"); start != "" {
		q = q.Where("payment_date >= ?", start)
	}
	if end := c.QueryParam("end_date"); end != "" {
		q = q.Where("payment_date <= ?", end)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return response.ServerError(c, "")
	}

	var rows []payslipRow
	if err := q.Select("payslips.*, employees.firstname, employees.lastname, banking_details.preferred_bank, banking_details.bank_account_number, banking_details.bank_account_name").
		Order("payslips.id DESC").
		Offset(p.Offset()).Limit(p.PerPage).
		Scan(&rows).Error; err != nil {
		return response.ServerError(c, "")
	}

	return response.Paginated(c, payslipViews(rows), p, total)
}

// Get resolves a nine digit payslip number or a numeric row id.
func (h *PayslipHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	q := h.listQuery(ctx).
		Select("payslips.*, employees.firstname, employees.lastname, banking_details.preferred_bank, banking_details.bank_account_number, banking_details.bank_account_name")

	if param := c.Param("id"); len(param) == 9 && isDigits(param) {
		q = q.Where("payslip_no = ?", param)
	} else {
		id, ok := pathID(c)
		if !ok {
			return response.BadRequest(c, "Invalid payslip ID", nil)
		}
		q = q.Where("payslips.id = ?", id)
	}

	var row payslipRow
	err := q.Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Payslip not found")
		}
		return response.ServerError(c, "")
	}

	views := payslipViews([]payslipRow{row})
	return response.Success(c, "Payslip retrieved successfully", views[0])
}

// ByEmployee lists all payslips for one employee, newest first.
func (h *PayslipHandler) ByEmployee(c echo.Context) error {
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

	var rows []payslipRow
	if err := h.listQuery(ctx).
		Select("payslips.*, employees.firstname, employees.lastname, banking_details.preferred_bank, banking_details.bank_account_number, banking_details.bank_account_name").
		Where("payslips.employee_id = ?", employeeID).
		Order("payslips.id DESC").
		Scan(&rows).Error; err != nil {
		return response.ServerError(c, "")
	}
	return response.Success(c, "Payslips retrieved successfully", payslipViews(rows))
}

func (h *PayslipHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payslip_create")

	var req payslipRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid input", nil)
	}
	if req.PaymentStatus == "" {
		req.PaymentStatus = "Pending"
	}
	if req.Bonus == nil {
		zero := 0.0
		req.Bonus = &zero
	}

	salary := ""
	if req.Salary != nil {
		salary = strconv.FormatFloat(*req.Salary, 'f', -1, 64)
	}
	v := validate.New(map[string]string{
		"employee_id":      req.EmployeeID,
		"salary":           salary,
		"person_in_charge": req.PersonInCharge,
		"cutoff_date":      req.CutoffDate,
		"payment_date":     req.PaymentDate,
		"payment_status":   req.PaymentStatus,
	}).
		Required("employee_id", "salary", "person_in_charge", "cutoff_date", "payment_date").
		Date("cutoff_date", "2006-01-02").
		Date("payment_date", "2006-01-02").
		In("payment_status", models.PaymentStatuses()...)
	if req.BankAccountID == 0 {
		v.Required("bank_account_id")
	}
	if req.Salary != nil && *req.Salary < 0 {
		return response.BadRequest(c, "Invalid input", map[string]string{"salary": "Salary must not be negative"})
	}
	if !v.Valid() {
		return response.BadRequest(c, "Invalid input", v.Errors())
	}

	employee, banking, err := h.resolveRefs(ctx, req.EmployeeID, req.BankAccountID)
	if err != nil {
		var bad *refError
		if errors.As(err, &bad) {
			return response.BadRequest(c, bad.msg, nil)
		}
		return response.ServerError(c, "")
	}

	payslipNo, err := h.nextPayslipNo(ctx)
	if err != nil {
		return response.ServerError(c, "")
	}

	payslip := models.Payslip{
		PayslipNo:      payslipNo,
		EmployeeID:     req.EmployeeID,
		BankAccountID:  req.BankAccountID,
		Salary:         *req.Salary,
		Bonus:          *req.Bonus,
		TotalSalary:    *req.Salary + *req.Bonus,
		PersonInCharge: req.PersonInCharge,
		CutoffDate:     req.CutoffDate,
		PaymentDate:    req.PaymentDate,
		PaymentStatus:  req.PaymentStatus,
	}
	if err := h.DB.WithContext(ctx).Create(&payslip).Error; err != nil {
		l.Error("payslip create failed", "error", err)
		return response.ServerError(c, "")
	}

	if err := h.renderPDFs(ctx, &payslip, employee, banking); err != nil {
		l.Error("payslip pdf generation failed", "payslip_no", payslip.PayslipNo, "error", err)
		return response.ServerError(c, "Payslip created but PDF generation failed")
	}

	h.Producer.Publish(ctx, payslip.PayslipNo, map[string]interface{}{
		"type":        "payslip_created",
		"payslip_no":  payslip.PayslipNo,
		"employee_id": payslip.EmployeeID,
		"total":       payslip.TotalSalary,
	})

	l.Info("payslip created", "payslip_no", payslip.PayslipNo, "employee_id", payslip.EmployeeID)
	return response.Created(c, "Payslip created successfully", payslip)
}

func (h *PayslipHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payslip_update")

	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid payslip ID", nil)
	}

	var payslip models.Payslip
	if err := h.DB.WithContext(ctx).First(&payslip, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Payslip not found")
		}
		return response.ServerError(c, "")
	}

	var req payslipRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid input", nil)
	}

	v := validate.New(map[string]string{
		"cutoff_date":    req.CutoffDate,
		"payment_date":   req.PaymentDate,
		"payment_status": req.PaymentStatus,
	}).
		Date("cutoff_date", "2006-01-02").
		Date("payment_date", "2006-01-02").
		In("payment_status", models.PaymentStatuses()...)
	if !v.Valid() {
		return response.BadRequest(c, "Invalid input", v.Errors())
	}
	if req.Salary != nil && *req.Salary < 0 {
		return response.BadRequest(c, "Invalid input", map[string]string{"salary": "Salary must not be negative"})
	}

	if req.EmployeeID != "" {
		payslip.EmployeeID = req.EmployeeID
	}
	if req.BankAccountID != 0 {
		payslip.BankAccountID = req.BankAccountID
	}
	if req.Salary != nil {
		payslip.Salary = *req.Salary
	}
	if req.Bonus != nil {
		payslip.Bonus = *req.Bonus
	}
	payslip.TotalSalary = payslip.Salary + payslip.Bonus
	if req.PersonInCharge != "" {
		payslip.PersonInCharge = req.PersonInCharge
	}
	if req.CutoffDate != "" {
		payslip.CutoffDate = req.CutoffDate
	}
	if req.PaymentDate != "" {
		payslip.PaymentDate = req.PaymentDate
	}
	if req.PaymentStatus != "" {
		payslip.PaymentStatus = req.PaymentStatus
	}

	employee, banking, err := h.resolveRefs(ctx, payslip.EmployeeID, payslip.BankAccountID)
	if err != nil {
		var bad *refError
		if errors.As(err, &bad) {
			return response.BadRequest(c, bad.msg, nil)
		}
		return response.ServerError(c, "")
	}

	if err := h.DB.WithContext(ctx).Save(&payslip).Error; err != nil {
		l.Error("payslip update failed", "error", err)
		return response.ServerError(c, "")
	}

	// The documents describe the payslip, so a changed payslip gets fresh
	// documents.
	if err := h.renderPDFs(ctx, &payslip, employee, banking); err != nil {
		l.Error("payslip pdf regeneration failed", "payslip_no", payslip.PayslipNo, "error", err)
		return response.ServerError(c, "Payslip updated but PDF generation failed")
	}

	h.Producer.Publish(ctx, payslip.PayslipNo, map[string]interface{}{
		"type":       "payslip_updated",
		"payslip_no": payslip.PayslipNo,
	})

	return response.Success(c, "Payslip updated successfully", payslip)
}

func (h *PayslipHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid payslip ID", nil)
	}

	var payslip models.Payslip
	if err := h.DB.WithContext(ctx).First(&payslip, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Payslip not found")
		}
		return response.ServerError(c, "")
	}

	if err := h.DB.WithContext(ctx).Delete(&payslip).Error; err != nil {
		return response.ServerError(c, "")
	}

	// Best effort: a missing file never fails the delete.
	h.removePDF(ctx, payslip.AgentPDFPath)
	h.removePDF(ctx, payslip.AdminPDFPath)

	h.Producer.Publish(ctx, payslip.PayslipNo, map[string]interface{}{
		"type":       "payslip_deleted",
		"payslip_no": payslip.PayslipNo,
	})

	return response.Success(c, "Payslip deleted successfully", nil)
}

// GeneratePDF re-renders both document variants for an existing payslip.
func (h *PayslipHandler) GeneratePDF(c echo.Context) error {
	ctx := c.Request().Context()

	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid payslip ID", nil)
	}

	var payslip models.Payslip
	if err := h.DB.WithContext(ctx).First(&payslip, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Payslip not found")
		}
		return response.ServerError(c, "")
	}

	employee, banking, err := h.resolveRefs(ctx, payslip.EmployeeID, payslip.BankAccountID)
	if err != nil {
		var bad *refError
		if errors.As(err, &bad) {
			return response.BadRequest(c, bad.msg, nil)
		}
		return response.ServerError(c, "")
	}

	if err := h.renderPDFs(ctx, &payslip, employee, banking); err != nil {
		logging.FromContext(ctx).Error("payslip pdf regeneration failed", "payslip_no", payslip.PayslipNo, "error", err)
		return response.ServerError(c, "PDF generation failed")
	}

	return response.Success(c, "PDF generated successfully", echo.Map{
		"agent_pdf_path": payslip.AgentPDFPath,
		"admin_pdf_path": payslip.AdminPDFPath,
	})
}

func (h *PayslipHandler) Statuses(c echo.Context) error {
	return response.Success(c, "Payment statuses retrieved successfully", models.PaymentStatuses())
}

func (h *PayslipHandler) listQuery(ctx context.Context) *gorm.DB {
	return h.DB.WithContext(ctx).Model(&models.Payslip{}).
		Joins("LEFT JOIN employees ON employees.employee_id = payslips.employee_id").
		Joins("LEFT JOIN banking_details ON banking_details.id = payslips.bank_account_id")
}

type refError struct{ msg string }

func (e *refError) Error() string { return e.msg }

// resolveRefs loads the employee and banking detail a payslip points at and
// checks that the banking detail belongs to that employee.
func (h *PayslipHandler) resolveRefs(ctx context.Context, employeeID string, bankAccountID uint) (*models.Employee, *models.BankingDetail, error) {
	var employee models.Employee
	if err := h.DB.WithContext(ctx).Where("employee_id = ?", employeeID).First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, &refError{"Employee does not exist"}
		}
		return nil, nil, err
	}

	var banking models.BankingDetail
	if err := h.DB.WithContext(ctx).First(&banking, bankAccountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, &refError{"Banking detail does not exist"}
		}
		return nil, nil, err
	}
	if banking.EmployeeID != employee.EmployeeID {
		return nil, nil, &refError{"Banking detail does not belong to this employee"}
	}

	return &employee, &banking, nil
}

func (h *PayslipHandler) renderPDFs(ctx context.Context, payslip *models.Payslip, employee *models.Employee, banking *models.BankingDetail) error {
	data := pdf.PayslipData{
		PayslipNo:      payslip.PayslipNo,
		EmployeeID:     payslip.EmployeeID,
		EmployeeName:   strings.TrimSpace(employee.Firstname + " " + employee.Lastname),
		PreferredBank:  banking.PreferredBank,
		BankAccountNo:  banking.BankAccountNumber,
		BankAccountNm:  banking.BankAccountName,
		Salary:         payslip.Salary,
		Bonus:          payslip.Bonus,
		TotalSalary:    payslip.TotalSalary,
		PersonInCharge: payslip.PersonInCharge,
		CutoffDate:     payslip.CutoffDate,
		PaymentDate:    payslip.PaymentDate,
		PaymentStatus:  payslip.PaymentStatus,
	}

	agent, err := h.PDF.Agent(data)
	if err != nil {
		return err
	}
	admin, err := h.PDF.Admin(data)
	if err != nil {
		return err
	}

	oldAgent, oldAdmin := payslip.AgentPDFPath, payslip.AdminPDFPath
	payslip.AgentPDFPath = agent.Path
	payslip.AdminPDFPath = admin.Path
	if err := h.DB.WithContext(ctx).Model(payslip).Updates(map[string]interface{}{
		"agent_pdf_path": agent.Path,
		"admin_pdf_path": admin.Path,
	}).Error; err != nil {
		return err
	}

	if oldAgent != "" && oldAgent != agent.Path {
		h.removePDF(ctx, oldAgent)
	}
	if oldAdmin != "" && oldAdmin != admin.Path {
		h.removePDF(ctx, oldAdmin)
	}
	return nil
}

// removePDF deletes a stored document by its recorded relative path.
func (h *PayslipHandler) removePDF(ctx context.Context, relPath string) {
	if relPath == "" {
		return
	}
	rel := strings.TrimPrefix(relPath, "/pdfs/")
	full := filepath.Join(h.PDF.BaseDir, filepath.FromSlash(rel))
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.FromContext(ctx).Warn("pdf cleanup failed", "path", full, "error", err)
	}
}

// nextPayslipNo produces sequential nine digit numbers, zero padded.
func (h *PayslipHandler) nextPayslipNo(ctx context.Context) (string, error) {
	var last string
	err := h.DB.WithContext(ctx).Model(&models.Payslip{}).
		Select("payslip_no").
		Order("payslip_no DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil {
		return "", err
	}

	seq := 1
	if last != "" {
		if n, err := strconv.Atoi(last); err == nil {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%09d", seq), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func payslipViews(rows []payslipRow) []payslipView {
	views := make([]payslipView, 0, len(rows))
	for _, r := range rows {
		v := payslipView{
			Payslip:      r.Payslip,
			EmployeeName: strings.TrimSpace(r.Firstname + " " + r.Lastname),
		}
		if r.PreferredBank != "" || r.BankAccountNumber != "" {
			v.BankDetails = &payslipBankView{
				PreferredBank:     r.PreferredBank,
				BankAccountNumber: r.BankAccountNumber,
				BankAccountName:   r.BankAccountName,
			}
		}
		views = append(views, v)
	}
	return views
}
