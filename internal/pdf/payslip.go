// Package pdf renders the two payslip variants: the agent copy with payment
// figures only, and the admin copy with banking details and sign-off lines.
package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
)

type PayslipData struct {
	PayslipNo      string
	EmployeeID     string
	EmployeeName   string
	PreferredBank  string
	BankAccountNo  string
	BankAccountNm  string
	Salary         float64
	Bonus          float64
	TotalSalary    float64
	PersonInCharge string
	CutoffDate     string
	PaymentDate    string
	PaymentStatus  string
}

type Result struct {
	Filename string
	Path     string // relative, stored on the payslip record
	FullPath string
}

type Generator struct {
	BaseDir     string
	CompanyName string

	Now func() time.Time
}

func NewGenerator(baseDir, companyName string) *Generator {
	return &Generator{BaseDir: baseDir, CompanyName: companyName}
}

func (g *Generator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g *Generator) Agent(data PayslipData) (*Result, error) {
	filename := fmt.Sprintf("agent_%s_%s.pdf", data.PayslipNo, g.now().Format("20060102_150405"))

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Agent Payslip - "+data.PayslipNo, false)
	doc.SetAuthor(g.CompanyName, false)
	doc.SetCreator("Pay Slip Generator", false)
	doc.AddPage()

	g.header(doc, "AGENT PAYSLIP", data.PayslipNo)

	doc.SetFont("Arial", "B", 12)
	doc.CellFormat(0, 10, "Employee Information", "", 1, "", false, 0, "")
	doc.SetFont("Arial", "", 10)
	labeled(doc, "Agent Name:", data.EmployeeName)
	labeled(doc, "Employee ID:", data.EmployeeID)
	labeled(doc, "Payment Date:", formatDate(data.PaymentDate))
	doc.Ln(5)

	doc.SetFont("Arial", "B", 12)
	doc.CellFormat(0, 10, "Payment Information", "", 1, "", false, 0, "")
	paymentTable(doc, data)
	doc.Ln(10)

	doc.SetFont("Arial", "I", 8)
	doc.CellFormat(0, 10, "This is a system-generated document. No signature required.", "", 1, "C", false, 0, "")

	return g.write(doc, "agent", filename)
}

func (g *Generator) Admin(data PayslipData) (*Result, error) {
	filename := fmt.Sprintf("admin_%s_%s.pdf", data.PayslipNo, g.now().Format("20060102_150405"))

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Admin Payslip - "+data.PayslipNo, false)
	doc.SetAuthor(g.CompanyName, false)
	doc.SetCreator("Pay Slip Generator", false)
	doc.AddPage()

	g.header(doc, "ADMIN PAYSLIP", data.PayslipNo)

	doc.SetFont("Arial", "B", 12)
	doc.CellFormat(0, 10, "Employee Information", "", 1, "", false, 0, "")
	doc.SetFont("Arial", "", 10)
	labeled(doc, "Agent Name:", data.EmployeeName)
	labeled(doc, "Employee ID:", data.EmployeeID)
	doc.Ln(5)

	doc.SetFont("Arial", "B", 12)
	doc.CellFormat(0, 10, "Banking Information", "", 1, "", false, 0, "")
	doc.SetFont("Arial", "", 10)
	labeled(doc, "Bank Name:", data.PreferredBank)
	labeled(doc, "Account Number:", data.BankAccountNo)
	labeled(doc, "Account Name:", data.BankAccountNm)
	doc.Ln(5)

	doc.SetFont("Arial", "B", 12)
	doc.CellFormat(0, 10, "Payment Information", "", 1, "", false, 0, "")
	doc.SetFont("Arial", "", 10)
	labeled(doc, "Person In Charge:", data.PersonInCharge)
	labeled(doc, "Payment Date:", formatDate(data.PaymentDate))
	paymentTable(doc, data)
	doc.Ln(5)

	doc.SetFont("Arial", "B", 10)
	doc.CellFormat(50, 8, "Payment Status:", "", 0, "", false, 0, "")
	switch data.PaymentStatus {
	case "Paid":
		doc.SetTextColor(0, 128, 0)
	case "Pending":
		doc.SetTextColor(255, 128, 0)
	default:
		doc.SetTextColor(255, 0, 0)
	}
	doc.CellFormat(0, 8, data.PaymentStatus, "", 1, "", false, 0, "")
	doc.SetTextColor(0, 0, 0)
	doc.Ln(10)

	doc.CellFormat(0, 8, "Authorized by: _________________________", "", 1, "", false, 0, "")
	doc.CellFormat(0, 8, "Date: _________________________", "", 1, "", false, 0, "")
	doc.Ln(5)

	doc.SetFont("Arial", "I", 8)
	doc.CellFormat(0, 10, "This is a system-generated document.", "", 1, "C", false, 0, "")

	return g.write(doc, "admin", filename)
}

func (g *Generator) header(doc *fpdf.Fpdf, title, payslipNo string) {
	doc.SetFont("Arial", "B", 16)
	doc.CellFormat(0, 10, g.CompanyName, "", 1, "R", false, 0, "")
	doc.Ln(10)
	doc.SetFont("Arial", "B", 14)
	doc.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	doc.SetFont("Arial", "", 10)
	doc.CellFormat(0, 5, "Payslip No: "+payslipNo, "", 1, "C", false, 0, "")
	doc.Ln(10)
}

func labeled(doc *fpdf.Fpdf, label, value string) {
	doc.CellFormat(50, 8, label, "", 0, "", false, 0, "")
	doc.CellFormat(0, 8, value, "", 1, "", false, 0, "")
}

func paymentTable(doc *fpdf.Fpdf, data PayslipData) {
	doc.SetFillColor(240, 240, 240)
	doc.SetFont("Arial", "B", 10)
	doc.CellFormat(100, 8, "Description", "1", 0, "L", true, 0, "")
	doc.CellFormat(60, 8, "Amount", "1", 1, "R", true, 0, "")

	doc.SetFont("Arial", "", 10)
	doc.CellFormat(100, 8, "Salary", "1", 0, "L", false, 0, "")
	doc.CellFormat(60, 8, amount(data.Salary), "1", 1, "R", false, 0, "")
	doc.CellFormat(100, 8, "Bonus", "1", 0, "L", false, 0, "")
	doc.CellFormat(60, 8, amount(data.Bonus), "1", 1, "R", false, 0, "")

	doc.SetFont("Arial", "B", 10)
	doc.CellFormat(100, 8, "Total", "1", 0, "L", true, 0, "")
	doc.CellFormat(60, 8, amount(data.TotalSalary), "1", 1, "R", true, 0, "")
}

func (g *Generator) write(doc *fpdf.Fpdf, variant, filename string) (*Result, error) {
	dir := filepath.Join(g.BaseDir, variant)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("pdf: create directory: %w", err)
	}

	fullPath := filepath.Join(dir, filename)
	if err := doc.OutputFileAndClose(fullPath); err != nil {
		return nil, fmt.Errorf("pdf: write %s: %w", filename, err)
	}

	return &Result{
		Filename: filename,
		Path:     "/pdfs/" + variant + "/" + filename,
		FullPath: fullPath,
	}, nil
}

func amount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatDate(d string) string {
	t, err := time.Parse("2006-01-02", d)
	if err != nil {
		return d
	}
	return t.Format("January 02, 2006")
}
