package pdf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testData() PayslipData {
	return PayslipData{
		PayslipNo:      "000000001",
		EmployeeID:     "202600001",
		EmployeeName:   "Alice Smith",
		PreferredBank:  "Test Bank",
		BankAccountNo:  "1234567890",
		BankAccountNm:  "Alice Smith",
		Salary:         1500,
		Bonus:          250,
		TotalSalary:    1750,
		PersonInCharge: "Bob Jones",
		CutoffDate:     "2026-08-15",
		PaymentDate:    "2026-08-31",
		PaymentStatus:  "Paid",
	}
}

func TestAgentPayslip(t *testing.T) {
	g := NewGenerator(t.TempDir(), "Test Co")
	g.Now = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }

	res, err := g.Agent(testData())
	require.NoError(t, err)
	require.Equal(t, "agent_000000001_20260831_120000.pdf", res.Filename)
	require.Equal(t, "/pdfs/agent/"+res.Filename, res.Path)

	info, err := os.Stat(res.FullPath)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
	require.Equal(t, filepath.Join(g.BaseDir, "agent", res.Filename), res.FullPath)
}

func TestAdminPayslip(t *testing.T) {
	g := NewGenerator(t.TempDir(), "Test Co")
	g.Now = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }

	res, err := g.Admin(testData())
	require.NoError(t, err)
	require.Equal(t, "admin_000000001_20260831_120000.pdf", res.Filename)

	info, err := os.Stat(res.FullPath)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestVariantsLandInSeparateDirectories(t *testing.T) {
	g := NewGenerator(t.TempDir(), "Test Co")

	agent, err := g.Agent(testData())
	require.NoError(t, err)
	admin, err := g.Admin(testData())
	require.NoError(t, err)

	require.Equal(t, filepath.Join(g.BaseDir, "agent"), filepath.Dir(agent.FullPath))
	require.Equal(t, filepath.Join(g.BaseDir, "admin"), filepath.Dir(admin.FullPath))
}
