package models

import "time"

type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Firstname string    `gorm:"not null"                 json:"firstname"`
	Lastname  string    `gorm:"not null"                 json:"lastname"`
	Username  string    `gorm:"unique;not null"          json:"username"`
	Password  string    `gorm:"not null"                 json:"-"`
	Email     string    `json:"email"`
	Role      string    `gorm:"not null;default:user"    json:"role"`
	Status    string    `gorm:"not null;default:active"  json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Employee IDs are business keys of the form YYYYNNNNN, generated per year.
type Employee struct {
	EmployeeID    string    `gorm:"primaryKey"      json:"employee_id"`
	Firstname     string    `gorm:"not null"        json:"firstname"`
	Lastname      string    `gorm:"not null"        json:"lastname"`
	ContactNumber string    `json:"contact_number"`
	Email         string    `json:"email"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type EmployeeAccount struct {
	AccountID       uint      `gorm:"primaryKey;autoIncrement" json:"account_id"`
	EmployeeID      string    `gorm:"index;not null"           json:"employee_id"`
	AccountEmail    string    `gorm:"not null"                 json:"account_email"`
	AccountPassword string    `gorm:"not null"                 json:"-"`
	AccountType     string    `gorm:"not null"                 json:"account_type"`
	AccountStatus   string    `gorm:"not null;default:ACTIVE"  json:"account_status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type BankingDetail struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID        string    `gorm:"index;not null"           json:"employee_id"`
	PreferredBank     string    `gorm:"not null"                 json:"preferred_bank"`
	BankAccountNumber string    `gorm:"not null"                 json:"bank_account_number"`
	BankAccountName   string    `gorm:"not null"                 json:"bank_account_name"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type Payslip struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PayslipNo      string    `gorm:"uniqueIndex;not null"     json:"payslip_no"`
	EmployeeID     string    `gorm:"index;not null"           json:"employee_id"`
	BankAccountID  uint      `gorm:"not null"                 json:"bank_account_id"`
	Salary         float64   `gorm:"not null"                 json:"salary"`
	Bonus          float64   `gorm:"not null"                 json:"bonus"`
	TotalSalary    float64   `gorm:"not null"                 json:"total_salary"`
	PersonInCharge string    `gorm:"not null"                 json:"person_in_charge"`
	CutoffDate     string    `gorm:"not null"                 json:"cutoff_date"`
	PaymentDate    string    `gorm:"not null"                 json:"payment_date"`
	PaymentStatus  string    `gorm:"not null"                 json:"payment_status"`
	AgentPDFPath   string    `json:"agent_pdf_path"`
	AdminPDFPath   string    `json:"admin_pdf_path"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func AccountTypes() []string {
	return []string{"Team Leader", "Overflow", "Auto-Warranty", "Commissions"}
}

func AccountStatuses() []string {
	return []string{"ACTIVE", "INACTIVE", "SUSPENDED"}
}

func PaymentStatuses() []string {
	return []string{"Paid", "Pending", "Cancelled"}
}
