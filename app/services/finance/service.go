package finance

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SoMApHQ/somapappv1-sub000/app/models"
)

// CollectionLoader reads one named collection from the backing store.
// Missing collections come back as empty maps, not errors.
type CollectionLoader interface {
	LoadCollection(name string) (RawCollection, error)
}

// YearDataset is the memoized composed record map for one academic year.
type YearDataset struct {
	Year     int
	Students map[string]*models.StudentFinancialRecord
}

// StudentYearSummary is one student's aggregate position in a year.
type StudentYearSummary struct {
	StudentID   string `json:"student_id"`
	Due         int64  `json:"due"`
	Paid        int64  `json:"paid"`
	Outstanding int64  `json:"outstanding"`
}

// YearSummary aggregates the whole school for one year. Graduated
// students are excluded from the totals.
type YearSummary struct {
	Students  map[string]*StudentYearSummary
	TotalDue  int64
	TotalPaid int64
}

// StudentFinance is the canonical answer to "where does this student
// stand for this year".
type StudentFinance struct {
	StudentID   string `json:"student_id"`
	AdmissionNo string `json:"admission_no,omitempty"`
	FullName    string `json:"full_name,omitempty"`
	Year        int    `json:"year"`
	ClassLevel  string `json:"class_level"`
	PaymentPlan string `json:"payment_plan,omitempty"`

	Due         int64 `json:"due"`
	Paid        int64 `json:"paid"`
	Outstanding int64 `json:"outstanding"`
	Credit      int64 `json:"credit"`

	CurrentPeriodLabel string                            `json:"current_period_label"`
	ExpectedDueToDate  int64                             `json:"expected_due_to_date"`
	ScheduleItems      []*models.InstallmentScheduleItem `json:"schedule_items"`

	IsGraduated bool `json:"is_graduated"`
	HasYearData bool `json:"has_year_data"`
}

// StudentFinanceAtCutoff extends StudentFinance with the position
// recomputed as of a historical date.
type StudentFinanceAtCutoff struct {
	StudentFinance
	CutoffDate          string `json:"cutoff_date"`
	ExpectedDueAtCutoff int64  `json:"expected_due_at_cutoff"`
	PaidAtCutoff        int64  `json:"paid_at_cutoff"`
	OutstandingAtCutoff int64  `json:"outstanding_at_cutoff"`
	CreditAtCutoff      int64  `json:"credit_at_cutoff"`
}

// SchoolTotals is the school-wide position for one year.
type SchoolTotals struct {
	Year        int   `json:"year"`
	Due         int64 `json:"due"`
	Collected   int64 `json:"collected"`
	Outstanding int64 `json:"outstanding"`
}

// RecentPayment is one row of the newest-first payment feed.
type RecentPayment struct {
	StudentID string    `json:"student_id"`
	FullName  string    `json:"full_name,omitempty"`
	Amount    int64     `json:"amount"`
	Method    string    `json:"method,omitempty"`
	PaidAt    time.Time `json:"paid_at"`
	Note      string    `json:"note,omitempty"`
	Reference string    `json:"reference,omitempty"`
}

// Service owns the per-year caches and answers the finance queries the
// rest of the suite calls into. It only ever reads the backing store.
type Service struct {
	store      CollectionLoader
	anchorYear int
	now        func() time.Time

	datasets  *yearCache[*YearDataset]
	summaries *yearCache[*YearSummary]
	expenses  *yearCache[int64]
}

// NewService builds a Service around a collection loader. anchorYear is
// the enrollment year class shifting counts from.
func NewService(store CollectionLoader, anchorYear int) *Service {
	return &Service{
		store:      store,
		anchorYear: anchorYear,
		now:        time.Now,
		datasets:   newYearCache[*YearDataset](),
		summaries:  newYearCache[*YearSummary](),
		expenses:   newYearCache[int64](),
	}
}

func collectionName(base string, year int) string {
	return fmt.Sprintf("%s_%d", base, year)
}

// loadWithFallback loads a year-scoped collection, falling back to the
// legacy non-year-scoped name when the scoped one is empty.
func (s *Service) loadWithFallback(base string, year int) (RawCollection, error) {
	scoped, err := s.store.LoadCollection(collectionName(base, year))
	if err != nil {
		return nil, err
	}
	if len(scoped) > 0 {
		return scoped, nil
	}
	return s.store.LoadCollection(base)
}

// ensureYearDataset fetches and composes all collections for a year,
// memoized single-flight.
func (s *Service) ensureYearDataset(year int) (*YearDataset, error) {
	return s.datasets.get(year, func() (*YearDataset, error) {
		in := ComposeInput{Year: year, AnchorYear: s.anchorYear}

		var err error
		if in.BaseStudents, err = s.store.LoadCollection("students"); err != nil {
			return nil, err
		}
		if in.AnchorEnrollments, err = s.loadWithFallback("enrollments", s.anchorYear); err != nil {
			return nil, err
		}
		if in.YearEnrollments, err = s.store.LoadCollection(collectionName("enrollments", year)); err != nil {
			return nil, err
		}
		if in.ClassFees, err = s.store.LoadCollection(collectionName("class_fees", year)); err != nil {
			return nil, err
		}
		if in.Overrides, err = s.store.LoadCollection(collectionName("fee_overrides", year)); err != nil {
			return nil, err
		}
		if in.Plans, err = s.store.LoadCollection(collectionName("plans", year)); err != nil {
			return nil, err
		}
		if in.Ledgers, err = s.loadWithFallback("ledgers", year); err != nil {
			return nil, err
		}
		if in.CarryForward, err = s.store.LoadCollection(collectionName("carry_forward", year)); err != nil {
			return nil, err
		}
		if in.StudentFees, err = s.store.LoadCollection(collectionName("student_fees", year)); err != nil {
			return nil, err
		}

		return &YearDataset{Year: year, Students: BuildFinanceStudents(in)}, nil
	})
}

// ensureYearSummary computes per-student and school-wide aggregates for a
// year, memoized single-flight.
func (s *Service) ensureYearSummary(year int) (*YearSummary, error) {
	return s.summaries.get(year, func() (*YearSummary, error) {
		dataset, err := s.ensureYearDataset(year)
		if err != nil {
			return nil, err
		}
		now := s.now()

		summary := &YearSummary{Students: make(map[string]*StudentYearSummary, len(dataset.Students))}
		for id, rec := range dataset.Students {
			schedule := BuildSchedule(rec, year, now)
			alloc := AllocatePayments(rec, schedule, now)

			due := rec.FeePerYear
			paid := alloc.TotalPaid
			switch {
			case rec.IsGraduated:
				due, paid = 0, 0
			case !rec.HasYearData:
				// Unconfigured students still owe the full default fee;
				// only their payments are zeroed.
				paid = 0
			}
			outstanding := due - (paid - alloc.Credit)
			if outstanding < 0 {
				outstanding = 0
			}

			summary.Students[id] = &StudentYearSummary{
				StudentID:   id,
				Due:         due,
				Paid:        paid,
				Outstanding: outstanding,
			}
			if !rec.IsGraduated {
				summary.TotalDue += due
				summary.TotalPaid += paid
			}
		}
		return summary, nil
	})
}

// LoadStudentFinance answers the canonical per-student query. A missing
// student yields (nil, nil).
func (s *Service) LoadStudentFinance(year int, studentID string) (*StudentFinance, error) {
	dataset, err := s.ensureYearDataset(year)
	if err != nil {
		return nil, err
	}
	rec := dataset.Students[studentID]
	if rec == nil {
		return nil, nil
	}
	finance := s.studentFinanceAt(rec, year, s.now())
	return &finance, nil
}

func (s *Service) studentFinanceAt(rec *models.StudentFinancialRecord, year int, now time.Time) StudentFinance {
	schedule := BuildSchedule(rec, year, now)
	alloc := AllocatePayments(rec, schedule, now)

	due := rec.FeePerYear
	if rec.IsGraduated {
		due = 0
	}
	outstanding := due - (alloc.TotalPaid - alloc.Credit)
	if outstanding < 0 {
		outstanding = 0
	}

	return StudentFinance{
		StudentID:          rec.StudentID,
		AdmissionNo:        rec.AdmissionNo,
		FullName:           rec.FullName(),
		Year:               year,
		ClassLevel:         rec.ClassLevel,
		PaymentPlan:        rec.PaymentPlan,
		Due:                due,
		Paid:               alloc.TotalPaid,
		Outstanding:        outstanding,
		Credit:             alloc.Credit,
		CurrentPeriodLabel: schedule.CurrentPeriodLabel,
		ExpectedDueToDate:  schedule.ExpectedDueToDate,
		ScheduleItems:      schedule.Items,
		IsGraduated:        rec.IsGraduated,
		HasYearData:        rec.HasYearData,
	}
}

// LoadStudentFinanceAtCutoff recomputes the student's position as of a
// historical date: only schedule items whose window starts on or before
// the cutoff and payments dated on or before it are counted.
func (s *Service) LoadStudentFinanceAtCutoff(year int, studentID, cutoffDate string) (*StudentFinanceAtCutoff, error) {
	cutoff, err := parseCutoff(cutoffDate)
	if err != nil {
		return nil, err
	}
	dataset, err := s.ensureYearDataset(year)
	if err != nil {
		return nil, err
	}
	rec := dataset.Students[studentID]
	if rec == nil {
		return nil, nil
	}

	result := &StudentFinanceAtCutoff{
		StudentFinance: s.studentFinanceAt(rec, year, s.now()),
		CutoffDate:     cutoff.Format("2006-01-02"),
	}

	trimmed := *rec
	trimmed.Payments = make(map[string]models.PaymentRecord)
	for id, payment := range rec.Payments {
		if !payment.PaidAt.After(cutoff) {
			trimmed.Payments[id] = payment
		}
	}

	full := BuildSchedule(&trimmed, year, cutoff)
	window := &Schedule{CurrentPeriodLabel: full.CurrentPeriodLabel}
	for _, item := range full.Items {
		if !item.From.After(cutoff) {
			window.Items = append(window.Items, item)
			result.ExpectedDueAtCutoff += item.Amount
		}
	}

	alloc := AllocatePayments(&trimmed, window, cutoff)
	result.PaidAtCutoff = alloc.TotalPaid
	result.CreditAtCutoff = alloc.Credit
	if outstanding := result.ExpectedDueAtCutoff - (alloc.TotalPaid - alloc.Credit); outstanding > 0 {
		result.OutstandingAtCutoff = outstanding
	}
	return result, nil
}

func parseCutoff(value string) (time.Time, error) {
	raw := strings.TrimSpace(value)
	if parsed, err := time.ParseInLocation(time.RFC3339, raw, time.Local); err == nil {
		return parsed, nil
	}
	if parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
		// Date-only cutoffs include the whole day.
		return parsed.Add(24*time.Hour - time.Second), nil
	}
	return time.Time{}, fmt.Errorf("invalid cutoff date %q", value)
}

// LoadSchoolTotals returns school-wide due/collected/outstanding for a
// year, excluding graduated students.
func (s *Service) LoadSchoolTotals(year int) (*SchoolTotals, error) {
	summary, err := s.ensureYearSummary(year)
	if err != nil {
		return nil, err
	}
	totals := &SchoolTotals{Year: year, Due: summary.TotalDue, Collected: summary.TotalPaid}
	if remaining := totals.Due - totals.Collected; remaining > 0 {
		totals.Outstanding = remaining
	}
	return totals, nil
}

// BalanceForYearAdmission returns the outstanding balance for a student
// identified by id or admission number. Unknown identifiers yield zero.
func (s *Service) BalanceForYearAdmission(year int, identifier string) (int64, error) {
	dataset, err := s.ensureYearDataset(year)
	if err != nil {
		return 0, err
	}
	summary, err := s.ensureYearSummary(year)
	if err != nil {
		return 0, err
	}

	rec := dataset.Students[identifier]
	if rec == nil {
		needle := normalizeKey(identifier)
		for _, candidate := range dataset.Students {
			if candidate.AdmissionNo != "" && normalizeKey(candidate.AdmissionNo) == needle {
				rec = candidate
				break
			}
		}
	}
	if rec == nil {
		return 0, nil
	}
	if entry := summary.Students[rec.StudentID]; entry != nil {
		return entry.Outstanding, nil
	}
	return 0, nil
}

// ListRecentPayments returns the newest payments across the school for a
// year, newest first.
func (s *Service) ListRecentPayments(year, limit int) ([]RecentPayment, error) {
	dataset, err := s.ensureYearDataset(year)
	if err != nil {
		return nil, err
	}

	var feed []RecentPayment
	for _, rec := range dataset.Students {
		for _, payment := range rec.Payments {
			feed = append(feed, RecentPayment{
				StudentID: rec.StudentID,
				FullName:  rec.FullName(),
				Amount:    payment.Amount,
				Method:    payment.Method,
				PaidAt:    payment.PaidAt,
				Note:      payment.Note,
				Reference: payment.Reference,
			})
		}
	}
	sort.Slice(feed, func(i, j int) bool {
		if feed[i].PaidAt.Equal(feed[j].PaidAt) {
			return feed[i].StudentID < feed[j].StudentID
		}
		return feed[i].PaidAt.After(feed[j].PaidAt)
	})
	if limit > 0 && len(feed) > limit {
		feed = feed[:limit]
	}
	return feed, nil
}

// LoadExpenseTotal sums the year's expense collection, memoized like the
// other per-year values.
func (s *Service) LoadExpenseTotal(year int) (int64, error) {
	return s.expenses.get(year, func() (int64, error) {
		expenses, err := s.store.LoadCollection(collectionName("expenses", year))
		if err != nil {
			return 0, err
		}
		var total int64
		for _, doc := range expenses {
			if amount := coerceAmount(fieldValue(doc, amountKeys...)); amount > 0 {
				total += amount
			}
		}
		return total, nil
	})
}

// ClearCaches drops every memoized dataset, summary and expense total.
// Collaborators call this after writing new payment data.
func (s *Service) ClearCaches() {
	s.datasets.clear()
	s.summaries.clear()
	s.expenses.clear()
}
