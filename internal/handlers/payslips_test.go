package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ivan-Lazz/thePayRoll/internal/models"
)

func payslipPayload(bankAccountID uint) map[string]interface{} {
	return map[string]interface{}{
		"employee_id":      "202600001",
		"bank_account_id":  bankAccountID,
		"salary":           1500.0,
		"bonus":            250.0,
		"person_in_charge": "Bob Jones",
		"cutoff_date":      "2026-08-15",
		"payment_date":     "2026-08-31",
		"payment_status":   "Paid",
	}
}

func pdfOnDisk(t *testing.T, env *testEnv, relPath string) string {
	t.Helper()
	require.NotEmpty(t, relPath)
	rel := strings.TrimPrefix(relPath, "/pdfs/")
	return filepath.Join(env.PDF.BaseDir, filepath.FromSlash(rel))
}

func TestCreatePayslip(t *testing.T) {
	env := newTestEnv(t)
	employee := seedEmployee(t, env, "202600001")
	banking := seedBanking(t, env, employee.EmployeeID)

	rec, c := env.doJSON(t, http.MethodPost, "/api/v1/payslips", payslipPayload(banking.ID))
	require.NoError(t, env.Payslips.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	data := dataOf(t, rec)
	require.Equal(t, "000000001", data["payslip_no"])
	require.EqualValues(t, 1750, data["total_salary"])

	var stored models.Payslip
	require.NoError(t, env.DB.First(&stored).Error)
	require.Equal(t, "000000001", stored.PayslipNo)
	require.FileExists(t, pdfOnDisk(t, env, stored.AgentPDFPath))
	require.FileExists(t, pdfOnDisk(t, env, stored.AdminPDFPath))
}

func TestPayslipNumbersAreSequential(t *testing.T) {
	env := newTestEnv(t)
	employee := seedEmployee(t, env, "202600001")
	banking := seedBanking(t, env, employee.EmployeeID)

	for _, want := range []string{"000000001", "000000002", "000000003"} {
		rec, c := env.doJSON(t, http.MethodPost, "/api/v1/payslips", payslipPayload(banking.ID))
		require.NoError(t, env.Payslips.Create(c))
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, want, dataOf(t, rec)["payslip_no"])
	}
}

func TestCreatePayslipValidation(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSON(t, http.MethodPost, "/api/v1/payslips", map[string]interface{}{
		"payment_status": "Unknown",
	})
	require.NoError(t, env.Payslips.Create(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errs := decodeEnvelope(t, rec)["errors"].(map[string]interface{})
	require.Contains(t, errs, "employee_id")
	require.Contains(t, errs, "salary")
	require.Contains(t, errs, "payment_status")
	require.Contains(t, errs, "bank_account_id")
}

func TestCreatePayslipBankMismatch(t *testing.T) {
	env := newTestEnv(t)
	seedEmployee(t, env, "202600001")
	other := seedEmployee(t, env, "202600002")
	foreignBanking := seedBanking(t, env, other.EmployeeID)

	rec, c := env.doJSON(t, http.MethodPost, "/api/v1/payslips", payslipPayload(foreignBanking.ID))
	require.NoError(t, env.Payslips.Create(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Banking detail does not belong to this employee", decodeEnvelope(t, rec)["message"])
}

func TestGetPayslipView(t *testing.T) {
	env := newTestEnv(t)
	employee := seedEmployee(t, env, "202600001")
	banking := seedBanking(t, env, employee.EmployeeID)

	rec, c := env.doJSON(t, http.MethodPost, "/api/v1/payslips", payslipPayload(banking.ID))
	require.NoError(t, env.Payslips.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, c = env.doJSON(t, http.MethodGet, "/api/v1/payslips/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.Payslips.Get(c))
	require.Equal(t, http.StatusOK, rec.Code)

	data := dataOf(t, rec)
	require.Equal(t, "Alice Smith", data["employee_name"])
	bank := data["bank_details"].(map[string]interface{})
	require.Equal(t, "Test Bank", bank["preferred_bank"])
	require.Equal(t, "1234567890", bank["bank_account_number"])
}

func TestGetPayslipByNumber(t *testing.T) {
	env := newTestEnv(t)
	employee := seedEmployee(t, env, "202600001")
	banking := seedBanking(t, env, employee.EmployeeID)

	_, c := env.doJSON(t, http.MethodPost, "/api/v1/payslips", payslipPayload(banking.ID))
	require.NoError(t, env.Payslips.Create(c))

	rec, c := env.doJSON(t, http.MethodGet, "/api/v1/payslips/000000001", nil)
	c.SetParamNames("id")
	c.SetParamValues("000000001")
	require.NoError(t, env.Payslips.Get(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "000000001", dataOf(t, rec)["payslip_no"])

	rec, c = env.doJSON(t, http.MethodGet, "/api/v1/payslips/999999999", nil)
	c.SetParamNames("id")
	c.SetParamValues("999999999")
	require.NoError(t, env.Payslips.Get(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListPayslipsFilters(t *testing.T) {
	env := newTestEnv(t)
	employee := seedEmployee(t, env, "202600001")
	banking := seedBanking(t, env, employee.EmployeeID)

	_, c := env.doJSON(t, http.MethodPost, "/api/v1/payslips", payslipPayload(banking.ID))
	require.NoError(t, env.Payslips.Create(c))

	pending := payslipPayload(banking.ID)
	pending["payment_status"] = "Pending"
	pending["payment_date"] = "2026-09-30"
	_, c = env.doJSON(t, http.MethodPost, "/api/v1/payslips", pending)
	require.NoError(t, env.Payslips.Create(c))

	rec, c := env.doJSON(t, http.MethodGet, "/api/v1/payslips?payment_status=Paid", nil)
	require.NoError(t, env.Payslips.List(c))
	require.Len(t, decodeEnvelope(t, rec)["data"], 1)

	rec, c = env.doJSON(t, http.MethodGet, "/api/v1/payslips?start_date=2026-09-01&end_date=2026-09-30", nil)
	require.NoError(t, env.Payslips.List(c))
	require.Len(t, decodeEnvelope(t, rec)["data"], 1)

	rec, c = env.doJSON(t, http.MethodGet, "/api/v1/payslips?search=Alice", nil)
	require.NoError(t, env.Payslips.List(c))
	require.Len(t, decodeEnvelope(t, rec)["data"], 2)
}

func TestPayslipsByEmployee(t *testing.T) {
	env := newTestEnv(t)
	employee := seedEmployee(t, env, "202600001")
	banking := seedBanking(t, env, employee.EmployeeID)

	_, c := env.doJSON(t, http.MethodPost, "/api/v1/payslips", payslipPayload(banking.ID))
	require.NoError(t, env.Payslips.Create(c))

	rec, c := env.doJSON(t, http.MethodGet, "/api/v1/payslips/employee/202600001", nil)
	c.SetParamNames("id")
	c.SetParamValues("202600001")
	require.NoError(t, env.Payslips.ByEmployee(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeEnvelope(t, rec)["data"], 1)

	rec, c = env.doJSON(t, http.MethodGet, "/api/v1/payslips/employee/000000000", nil)
	c.SetParamNames("id")
	c.SetParamValues("000000000")
	require.NoError(t, env.Payslips.ByEmployee(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdatePayslipRecalculatesAndRegenerates(t *testing.T) {
	env := newTestEnv(t)
	employee := seedEmployee(t, env, "202600001")
	banking := seedBanking(t, env, employee.EmployeeID)

	_, c := env.doJSON(t, http.MethodPost, "/api/v1/payslips", payslipPayload(banking.ID))
	require.NoError(t, env.Payslips.Create(c))

	var before models.Payslip
	require.NoError(t, env.DB.First(&before).Error)

	rec, c := env.doJSON(t, http.MethodPut, "/api/v1/payslips/1", map[string]interface{}{
		"salary": 2000.0,
	})
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.Payslips.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var after models.Payslip
	require.NoError(t, env.DB.First(&after).Error)
	require.EqualValues(t, 2000, after.Salary)
	require.EqualValues(t, 2250, after.TotalSalary)
	require.FileExists(t, pdfOnDisk(t, env, after.AgentPDFPath))
	require.FileExists(t, pdfOnDisk(t, env, after.AdminPDFPath))
}

func TestGeneratePDFEndpoint(t *testing.T) {
	env := newTestEnv(t)
	employee := seedEmployee(t, env, "202600001")
	banking := seedBanking(t, env, employee.EmployeeID)

	_, c := env.doJSON(t, http.MethodPost, "/api/v1/payslips", payslipPayload(banking.ID))
	require.NoError(t, env.Payslips.Create(c))

	rec, c := env.doJSON(t, http.MethodPost, "/api/v1/payslips/1/generate-pdf", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.Payslips.GeneratePDF(c))
	require.Equal(t, http.StatusOK, rec.Code)

	data := dataOf(t, rec)
	require.FileExists(t, pdfOnDisk(t, env, data["agent_pdf_path"].(string)))
	require.FileExists(t, pdfOnDisk(t, env, data["admin_pdf_path"].(string)))
}

func TestDeletePayslipRemovesFiles(t *testing.T) {
	env := newTestEnv(t)
	employee := seedEmployee(t, env, "202600001")
	banking := seedBanking(t, env, employee.EmployeeID)

	_, c := env.doJSON(t, http.MethodPost, "/api/v1/payslips", payslipPayload(banking.ID))
	require.NoError(t, env.Payslips.Create(c))

	var stored models.Payslip
	require.NoError(t, env.DB.First(&stored).Error)
	agentPath := pdfOnDisk(t, env, stored.AgentPDFPath)
	adminPath := pdfOnDisk(t, env, stored.AdminPDFPath)
	require.FileExists(t, agentPath)
	require.FileExists(t, adminPath)

	rec, c := env.doJSON(t, http.MethodDelete, "/api/v1/payslips/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.Payslips.Delete(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.Payslip{}).Count(&count).Error)
	require.EqualValues(t, 0, count)

	_, err := os.Stat(agentPath)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(adminPath)
	require.True(t, os.IsNotExist(err))
}

func TestPaymentStatusMeta(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSON(t, http.MethodGet, "/api/v1/payslips/meta/statuses", nil)
	require.NoError(t, env.Payslips.Statuses(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeEnvelope(t, rec)["data"], len(models.PaymentStatuses()))
}
