package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ivan-Lazz/thePayRoll/internal/models"
)

func TestCreateBankingDetail(t *testing.T) {
	env := newTestEnv(t)
	seedEmployee(t, env, "202600001")

	rec, c := env.doJSON(t, http.MethodPost, "/api/v1/banking", map[string]string{
		"employee_id":         "202600001",
		"preferred_bank":      "Test Bank",
		"bank_account_number": "1234567890",
		"bank_account_name":   "Alice Smith",
	})
	require.NoError(t, env.Banking.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "Test Bank", dataOf(t, rec)["preferred_bank"])
}

func TestCreateBankingDetailValidation(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSON(t, http.MethodPost, "/api/v1/banking", map[string]string{
		"employee_id": "202600001",
	})
	require.NoError(t, env.Banking.Create(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errs := decodeEnvelope(t, rec)["errors"].(map[string]interface{})
	require.Contains(t, errs, "preferred_bank")
	require.Contains(t, errs, "bank_account_number")
	require.Contains(t, errs, "bank_account_name")
}

func TestCreateBankingDetailUnknownEmployee(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSON(t, http.MethodPost, "/api/v1/banking", map[string]string{
		"employee_id":         "000000000",
		"preferred_bank":      "Test Bank",
		"bank_account_number": "1234567890",
		"bank_account_name":   "Alice Smith",
	})
	require.NoError(t, env.Banking.Create(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Employee does not exist", decodeEnvelope(t, rec)["message"])
}

func TestBankingByEmployee(t *testing.T) {
	env := newTestEnv(t)
	employee := seedEmployee(t, env, "202600001")
	seedBanking(t, env, employee.EmployeeID)
	seedBanking(t, env, employee.EmployeeID)

	rec, c := env.doJSON(t, http.MethodGet, "/api/v1/banking/employee/202600001", nil)
	c.SetParamNames("id")
	c.SetParamValues("202600001")
	require.NoError(t, env.Banking.ByEmployee(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeEnvelope(t, rec)["data"], 2)

	rec, c = env.doJSON(t, http.MethodGet, "/api/v1/banking/employee/000000000", nil)
	c.SetParamNames("id")
	c.SetParamValues("000000000")
	require.NoError(t, env.Banking.ByEmployee(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateBankingDetail(t *testing.T) {
	env := newTestEnv(t)
	employee := seedEmployee(t, env, "202600001")
	detail := seedBanking(t, env, employee.EmployeeID)

	rec, c := env.doJSON(t, http.MethodPut, "/api/v1/banking/1", map[string]string{
		"preferred_bank": "Other Bank",
	})
	c.SetParamNames("id")
	c.SetParamValues(itoa(detail.ID))
	require.NoError(t, env.Banking.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.BankingDetail
	require.NoError(t, env.DB.First(&stored, detail.ID).Error)
	require.Equal(t, "Other Bank", stored.PreferredBank)
	require.Equal(t, "1234567890", stored.BankAccountNumber)
}

func TestDeleteBankingDetail(t *testing.T) {
	env := newTestEnv(t)
	employee := seedEmployee(t, env, "202600001")
	detail := seedBanking(t, env, employee.EmployeeID)

	rec, c := env.doJSON(t, http.MethodDelete, "/api/v1/banking/1", nil)
	c.SetParamNames("id")
	c.SetParamValues(itoa(detail.ID))
	require.NoError(t, env.Banking.Delete(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.BankingDetail{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}
