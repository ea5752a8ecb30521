package models

import "time"

// Installment status values produced by the allocation waterfall.
const (
	InstallmentCleared        = "Cleared"
	InstallmentPartialOverdue = "Partially Paid (Overdue)"
	InstallmentOverdue        = "Overdue"
	InstallmentPartial        = "Partially Paid"
	InstallmentPending        = "Pending"
)

// PaymentRecord is a single normalized ledger entry for a student.
// Raw ledger entries arrive untyped from the document store and are
// coerced into this shape before any financial computation sees them.
type PaymentRecord struct {
	ID        string    `json:"id"`
	Amount    int64     `json:"amount"`
	PaidAt    time.Time `json:"paid_at"`
	Method    string    `json:"method,omitempty"`
	Note      string    `json:"note,omitempty"`
	Reference string    `json:"reference,omitempty"`
	Year      int       `json:"year"`
}

// ScheduleEntry is one entry of a per-student custom schedule or a named
// plan schedule. Custom entries carry a fixed Amount; plan entries carry a
// Weight that gets apportioned over the student's base fee.
type ScheduleEntry struct {
	Label  string    `json:"label"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Amount int64     `json:"amount,omitempty"`
	Weight int64     `json:"weight,omitempty"`
}

// InstallmentScheduleItem is one due installment for a student in a year.
type InstallmentScheduleItem struct {
	Key           string    `json:"key"`
	Label         string    `json:"label"`
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	Amount        int64     `json:"amount"`
	PaidAllocated int64     `json:"paid_allocated"`
	Status        string    `json:"status"`
}

// StudentFinancialRecord is the canonical composed financial position of
// one student for one academic year. It is derived in memory from the raw
// source collections and never written back.
type StudentFinancialRecord struct {
	StudentID   string `json:"student_id"`
	AdmissionNo string `json:"admission_no,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`

	ClassLevel  string `json:"class_level"`
	PaymentPlan string `json:"payment_plan,omitempty"`

	BaseFee     int64 `json:"base_fee"`
	CarryAmount int64 `json:"carry_amount"`
	// FeePerYear is BaseFee plus CarryAmount.
	FeePerYear int64 `json:"fee_per_year"`
	// PreviousDebt is composed as zero; carry-forward debt travels through
	// CarryAmount instead. The allocation waterfall still consumes a
	// non-zero value if one is ever set.
	PreviousDebt int64 `json:"previous_debt"`

	Payments map[string]PaymentRecord `json:"payments,omitempty"`

	HasYearData bool `json:"has_year_data"`
	IsGraduated bool `json:"is_graduated"`

	// CustomSchedule, when present, is used verbatim by the schedule
	// builder. PlanSchedule holds the named plan's weighted entries.
	CustomSchedule []ScheduleEntry `json:"custom_schedule,omitempty"`
	PlanSchedule   []ScheduleEntry `json:"plan_schedule,omitempty"`
}

// FullName joins the student's name parts.
func (r *StudentFinancialRecord) FullName() string {
	switch {
	case r.FirstName != "" && r.LastName != "":
		return r.FirstName + " " + r.LastName
	case r.FirstName != "":
		return r.FirstName
	default:
		return r.LastName
	}
}
