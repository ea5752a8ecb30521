package finance

import (
	"testing"
	"time"

	"github.com/SoMApHQ/somapappv1-sub000/app/models"
)

func scheduleAmounts(schedule *Schedule) []int64 {
	amounts := make([]int64, 0, len(schedule.Items))
	for _, item := range schedule.Items {
		amounts = append(amounts, item.Amount)
	}
	return amounts
}

func TestBuildScheduleHalfYearPreset(t *testing.T) {
	rec := &models.StudentFinancialRecord{
		StudentID:   "s1",
		ClassLevel:  "P.4",
		PaymentPlan: "Half Year",
		BaseFee:     120000,
		FeePerYear:  120000,
	}
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.Local)

	schedule := BuildSchedule(rec, 2026, now)
	if len(schedule.Items) != 2 {
		t.Fatalf("half-year schedule has %d items, want 2", len(schedule.Items))
	}
	if schedule.Items[0].Amount != 60000 || schedule.Items[1].Amount != 60000 {
		t.Errorf("amounts = %v, want [60000 60000]", scheduleAmounts(schedule))
	}
	if schedule.Items[0].Label != "First Half" || schedule.Items[1].Label != "Second Half" {
		t.Errorf("labels = %q, %q", schedule.Items[0].Label, schedule.Items[1].Label)
	}
	// Neither due window has closed by April.
	if schedule.ExpectedDueToDate != 0 || schedule.CurrentPeriodLabel != "-" {
		t.Errorf("expected due %d label %q, want 0 and '-'", schedule.ExpectedDueToDate, schedule.CurrentPeriodLabel)
	}
}

func TestBuildScheduleConservesFeePerYear(t *testing.T) {
	recs := []*models.StudentFinancialRecord{
		{StudentID: "a", ClassLevel: "P.3", PaymentPlan: "", BaseFee: 90000, CarryAmount: 10000, FeePerYear: 100000},
		{StudentID: "b", ClassLevel: "P.2", PaymentPlan: "Monthly", BaseFee: 123457, FeePerYear: 123457},
		{StudentID: "c", ClassLevel: "TOP", PaymentPlan: "Termly", BaseFee: 77777, CarryAmount: 3, FeePerYear: 77780},
		{StudentID: "d", ClassLevel: "P.7", PaymentPlan: "", BaseFee: 200001, FeePerYear: 200001},
	}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)

	for _, rec := range recs {
		schedule := BuildSchedule(rec, 2026, now)
		if got := sum(scheduleAmounts(schedule)); got != rec.FeePerYear {
			t.Errorf("student %s: schedule sums to %d, want %d (amounts %v)",
				rec.StudentID, got, rec.FeePerYear, scheduleAmounts(schedule))
		}
	}
}

func TestBuildScheduleCarryFoldsIntoFirstItem(t *testing.T) {
	rec := &models.StudentFinancialRecord{
		StudentID:   "s1",
		ClassLevel:  "P.3",
		BaseFee:     90000,
		CarryAmount: 12000,
		FeePerYear:  102000,
	}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)

	schedule := BuildSchedule(rec, 2026, now)
	if len(schedule.Items) != 3 {
		t.Fatalf("termly schedule has %d items, want 3", len(schedule.Items))
	}
	if schedule.Items[0].Amount != 42000 {
		t.Errorf("first item = %d, want 30000 + 12000 carry", schedule.Items[0].Amount)
	}
	if schedule.Items[1].Amount != 30000 || schedule.Items[2].Amount != 30000 {
		t.Errorf("later items = %v", scheduleAmounts(schedule))
	}
}

func TestBuildScheduleDecemberWindowUsesPriorYear(t *testing.T) {
	rec := &models.StudentFinancialRecord{
		StudentID:  "s1",
		ClassLevel: "P.3",
		BaseFee:    90000,
		FeePerYear: 90000,
	}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)

	schedule := BuildSchedule(rec, 2026, now)
	first := schedule.Items[0]
	if first.From.Year() != 2025 || first.From.Month() != time.December {
		t.Errorf("term 1 window opens %v, want December 2025", first.From)
	}
	if first.To.Year() != 2026 || first.To.Month() != time.February {
		t.Errorf("term 1 window closes %v, want February 2026", first.To)
	}
}

func TestBuildScheduleCustomOverrideIsVerbatim(t *testing.T) {
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2026, 8, 31, 23, 59, 59, 0, time.Local)
	rec := &models.StudentFinancialRecord{
		StudentID:  "s1",
		ClassLevel: "P.4",
		BaseFee:    500000,
		FeePerYear: 500000,
		CustomSchedule: []models.ScheduleEntry{
			{Label: "Agreed Deposit", From: from, To: to, Amount: 123},
		},
	}
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.Local)

	schedule := BuildSchedule(rec, 2026, now)
	if len(schedule.Items) != 1 {
		t.Fatalf("custom schedule has %d items, want 1", len(schedule.Items))
	}
	if schedule.Items[0].Amount != 123 {
		t.Errorf("custom amounts must not be apportioned: got %d", schedule.Items[0].Amount)
	}
	if schedule.Items[0].Label != "Agreed Deposit" {
		t.Errorf("label = %q", schedule.Items[0].Label)
	}
}

func TestBuildSchedulePlanWeightsWithMonthlySnap(t *testing.T) {
	rec := &models.StudentFinancialRecord{
		StudentID:   "s1",
		ClassLevel:  "P.4",
		PaymentPlan: "Monthly Installments",
		BaseFee:     100000,
		CarryAmount: 5000,
		FeePerYear:  105000,
		PlanSchedule: []models.ScheduleEntry{
			{Label: "February", Weight: 1, From: time.Date(2026, 2, 1, 0, 0, 0, 0, time.Local), To: time.Date(2026, 2, 28, 23, 59, 59, 0, time.Local)},
			{Label: "March", Weight: 1, From: time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local), To: time.Date(2026, 3, 10, 23, 59, 59, 0, time.Local)},
		},
	}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)

	schedule := BuildSchedule(rec, 2026, now)
	if len(schedule.Items) != 2 {
		t.Fatalf("plan schedule has %d items, want 2", len(schedule.Items))
	}
	// 100000 over [1,1] plus the 5000 carry folded into February.
	if schedule.Items[0].Amount != 55000 || schedule.Items[1].Amount != 50000 {
		t.Errorf("amounts = %v, want [55000 50000]", scheduleAmounts(schedule))
	}
	// February's due date was the 28th; monthly plans snap to the 10th.
	if schedule.Items[0].To.Day() != 10 {
		t.Errorf("February due date = %v, want snapped to the 10th", schedule.Items[0].To)
	}
	// March was already on the 10th and stays put.
	if !schedule.Items[1].To.Equal(rec.PlanSchedule[1].To) {
		t.Errorf("March due date moved: %v", schedule.Items[1].To)
	}
}

func TestBuildScheduleGraduatedIsEmpty(t *testing.T) {
	rec := &models.StudentFinancialRecord{
		StudentID:   "s1",
		ClassLevel:  ClassGraduated,
		IsGraduated: true,
	}
	schedule := BuildSchedule(rec, 2026, time.Date(2026, 6, 1, 0, 0, 0, 0, time.Local))
	if len(schedule.Items) != 0 {
		t.Errorf("graduated schedule has %d items, want 0", len(schedule.Items))
	}
	if schedule.CurrentPeriodLabel != "-" {
		t.Errorf("label = %q, want '-'", schedule.CurrentPeriodLabel)
	}
}

func TestBuildScheduleDuePosition(t *testing.T) {
	rec := &models.StudentFinancialRecord{
		StudentID:  "s1",
		ClassLevel: "P.3",
		BaseFee:    90000,
		FeePerYear: 90000,
	}
	// Mid-July: Term 1 (due Feb 10) and Term 2 (due Jun 10) have closed.
	now := time.Date(2026, 7, 15, 0, 0, 0, 0, time.Local)

	schedule := BuildSchedule(rec, 2026, now)
	if schedule.ExpectedDueToDate != 60000 {
		t.Errorf("expected due = %d, want 60000", schedule.ExpectedDueToDate)
	}
	if schedule.CurrentPeriodLabel != "Term 2" {
		t.Errorf("current period = %q, want Term 2", schedule.CurrentPeriodLabel)
	}
}

func TestPresetSelection(t *testing.T) {
	tests := []struct {
		plan, class string
		wantItems   int
		wantFirst   string
	}{
		{"Monthly", "P.4", 10, "February"},
		{"Half Year", "P.4", 2, "First Half"},
		{"Full Year Upfront", "P.4", 1, "Full Year"},
		{"", "P.7", 2, "Term 1"},
		{"", "BABY", 3, "Term 1"},
		{"", "P.4", 3, "Term 1"},
		{"Termly", "P.5", 3, "Term 1"},
	}

	for _, tt := range tests {
		preset := presetFor(tt.plan, tt.class)
		if len(preset.labels) != tt.wantItems {
			t.Errorf("presetFor(%q, %q) has %d installments, want %d", tt.plan, tt.class, len(preset.labels), tt.wantItems)
			continue
		}
		if preset.labels[0] != tt.wantFirst {
			t.Errorf("presetFor(%q, %q) first label = %q, want %q", tt.plan, tt.class, preset.labels[0], tt.wantFirst)
		}
	}
}
