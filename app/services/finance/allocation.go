package finance

import (
	"sort"
	"time"

	"github.com/SoMApHQ/somapappv1-sub000/app/models"
)

// Allocation is the result of walking a student's payment pool against
// their schedule. TotalPaid always equals the sum of per-item allocations
// plus PrevDebtConsumed plus Credit.
type Allocation struct {
	TotalPaid        int64 `json:"total_paid"`
	PrevDebtConsumed int64 `json:"prev_debt_consumed"`
	PrevDebtAfter    int64 `json:"prev_debt_after"`
	Credit           int64 `json:"credit"`
	DebtTillNow      int64 `json:"debt_till_now"`
}

// sortedPayments returns the record's payments ordered by payment time
// ascending, entry key breaking ties.
func sortedPayments(rec *models.StudentFinancialRecord) []models.PaymentRecord {
	payments := make([]models.PaymentRecord, 0, len(rec.Payments))
	for _, p := range rec.Payments {
		payments = append(payments, p)
	}
	sort.Slice(payments, func(i, j int) bool {
		if payments[i].PaidAt.Equal(payments[j].PaidAt) {
			return payments[i].ID < payments[j].ID
		}
		return payments[i].PaidAt.Before(payments[j].PaidAt)
	})
	return payments
}

// installmentStatus classifies one schedule item after allocation.
func installmentStatus(item *models.InstallmentScheduleItem, now time.Time) string {
	duePassed := item.To.Before(now)
	switch {
	case item.PaidAllocated >= item.Amount:
		return models.InstallmentCleared
	case duePassed && item.PaidAllocated > 0:
		return models.InstallmentPartialOverdue
	case duePassed:
		return models.InstallmentOverdue
	case item.PaidAllocated > 0:
		return models.InstallmentPartial
	default:
		return models.InstallmentPending
	}
}

// AllocatePayments applies the student's payment pool first to previous
// debt, then to schedule items in schedule order, leaving any remainder as
// credit. Schedule items are mutated in place (PaidAllocated, Status).
func AllocatePayments(rec *models.StudentFinancialRecord, schedule *Schedule, now time.Time) Allocation {
	var result Allocation
	if rec == nil || schedule == nil {
		return result
	}

	for _, payment := range sortedPayments(rec) {
		result.TotalPaid += payment.Amount
	}
	pool := result.TotalPaid

	result.PrevDebtAfter = rec.PreviousDebt
	if rec.PreviousDebt > 0 && pool > 0 {
		consumed := rec.PreviousDebt
		if pool < consumed {
			consumed = pool
		}
		result.PrevDebtConsumed = consumed
		result.PrevDebtAfter = rec.PreviousDebt - consumed
		pool -= consumed
	}

	for _, item := range schedule.Items {
		take := item.Amount
		if pool < take {
			take = pool
		}
		if take < 0 {
			take = 0
		}
		item.PaidAllocated = take
		pool -= take
	}
	result.Credit = pool

	var dueSoFar int64
	for _, item := range schedule.Items {
		item.Status = installmentStatus(item, now)
		if item.To.Before(now) {
			dueSoFar += item.Amount
		}
	}

	consumed := result.TotalPaid - result.Credit
	if debt := dueSoFar - consumed; debt > 0 {
		result.DebtTillNow = debt
	}
	return result
}
