package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Ivan-Lazz/thePayRoll/internal/auth"
	"github.com/Ivan-Lazz/thePayRoll/internal/hash"
	"github.com/Ivan-Lazz/thePayRoll/internal/models"
	"github.com/Ivan-Lazz/thePayRoll/internal/pdf"
	"github.com/Ivan-Lazz/thePayRoll/internal/session"
	"github.com/Ivan-Lazz/thePayRoll/internal/token"
)

type testEnv struct {
	DB    *gorm.DB
	Store *session.Store
	Codec *token.Codec
	Gate  *auth.Gate
	PDF   *pdf.Generator

	Auth      *AuthHandler
	Users     *UserHandler
	Employees *EmployeeHandler
	Accounts  *AccountHandler
	Banking   *BankingHandler
	Payslips  *PayslipHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Employee{},
		&models.EmployeeAccount{},
		&models.BankingDetail{},
		&models.Payslip{},
	))

	store := session.NewStore()
	codec := token.NewCodec([]byte("test-secret"), 3600)
	issuer := token.NewCSRFIssuer(3600)
	gate := auth.NewGate(store, codec, 1800)
	generator := pdf.NewGenerator(t.TempDir(), "Test Co")

	return &testEnv{
		DB:    db,
		Store: store,
		Codec: codec,
		Gate:  gate,
		PDF:   generator,

		Auth: &AuthHandler{
			DB:    db,
			Gate:  gate,
			Codec: codec,
			CSRF:  issuer,
			Store: store,
		},
		Users:     &UserHandler{DB: db},
		Employees: &EmployeeHandler{DB: db},
		Accounts:  &AccountHandler{DB: db},
		Banking:   &BankingHandler{DB: db},
		Payslips:  &PayslipHandler{DB: db, PDF: generator},
	}
}

func (env *testEnv) doJSON(t *testing.T, method, path string, payload interface{}) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, e.NewContext(req, rec)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func dataOf(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	envelope := decodeEnvelope(t, rec)
	data, ok := envelope["data"].(map[string]interface{})
	require.True(t, ok, "expected data object, got: %s", rec.Body.String())
	return data
}

func seedUser(t *testing.T, env *testEnv, username, password, role, status string) models.User {
	t.Helper()
	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)
	user := models.User{
		Firstname: "Test",
		Lastname:  "User",
		Username:  username,
		Password:  pwHash,
		Email:     username + "@example.com",
		Role:      role,
		Status:    status,
	}
	require.NoError(t, env.DB.Create(&user).Error)
	return user
}

func seedEmployee(t *testing.T, env *testEnv, id string) models.Employee {
	t.Helper()
	employee := models.Employee{
		EmployeeID:    id,
		Firstname:     "Alice",
		Lastname:      "Smith",
		ContactNumber: "555-0100",
		Email:         "alice@example.com",
	}
	require.NoError(t, env.DB.Create(&employee).Error)
	return employee
}

func seedBanking(t *testing.T, env *testEnv, employeeID string) models.BankingDetail {
	t.Helper()
	detail := models.BankingDetail{
		EmployeeID:        employeeID,
		PreferredBank:     "Test Bank",
		BankAccountNumber: "1234567890",
		BankAccountName:   "Alice Smith",
	}
	require.NoError(t, env.DB.Create(&detail).Error)
	return detail
}
