package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/SoMApHQ/somapappv1-sub000/app/models"
)

// Schedule is the ordered installment list for one student and year plus
// the due position relative to "now".
type Schedule struct {
	Items              []*models.InstallmentScheduleItem `json:"items"`
	CurrentPeriodLabel string                            `json:"current_period_label"`
	ExpectedDueToDate  int64                             `json:"expected_due_to_date"`
}

// dueWindow is a preset due window as month/day offsets inside the
// academic year. A December month belongs to the prior calendar year
// (pre-term billing opens before the year starts).
type dueWindow struct {
	fromMonth, fromDay int
	toMonth, toDay     int
}

// planPreset is one row of the built-in schedule table. A preset matches
// when any keyword appears in the plan name (or it has no keywords) and
// the class restriction, if any, includes the student's class.
type planPreset struct {
	keywords []string
	classes  []string
	labels   []string
	weights  []int64
	windows  []dueWindow
}

var planPresets = buildPlanPresets()

func buildPlanPresets() []planPreset {
	monthly := planPreset{keywords: []string{"month"}}
	for month := 2; month <= 11; month++ {
		monthly.labels = append(monthly.labels, time.Month(month).String())
		monthly.weights = append(monthly.weights, 1)
		monthly.windows = append(monthly.windows, dueWindow{month, 1, month, 10})
	}

	return []planPreset{
		monthly,
		{
			keywords: []string{"half", "semi"},
			labels:   []string{"First Half", "Second Half"},
			weights:  []int64{1, 1},
			windows:  []dueWindow{{2, 1, 5, 31}, {6, 1, 10, 31}},
		},
		{
			keywords: []string{"full", "annual", "lump"},
			labels:   []string{"Full Year"},
			weights:  []int64{1},
			windows:  []dueWindow{{2, 1, 3, 31}},
		},
		// P.7 candidates sit PLE in November; their fees close out over
		// two installments in the first half of the year.
		{
			classes: []string{"P.7"},
			labels:  []string{"Term 1", "Term 2"},
			weights: []int64{3, 2},
			windows: []dueWindow{{12, 15, 2, 10}, {5, 20, 6, 10}},
		},
		{
			classes: []string{"BABY", "MIDDLE", "TOP"},
			labels:  []string{"Term 1", "Term 2", "Term 3"},
			weights: []int64{1, 1, 1},
			windows: []dueWindow{{2, 1, 2, 28}, {6, 1, 6, 30}, {9, 1, 9, 30}},
		},
		// Default termly plan: Term 1 billing opens mid-December of the
		// prior year.
		{
			labels:  []string{"Term 1", "Term 2", "Term 3"},
			weights: []int64{1, 1, 1},
			windows: []dueWindow{{12, 15, 2, 10}, {5, 20, 6, 10}, {8, 20, 9, 10}},
		},
	}
}

func (p planPreset) matches(planName, classLevel string) bool {
	if len(p.keywords) > 0 {
		name := strings.ToLower(planName)
		found := false
		for _, keyword := range p.keywords {
			if strings.Contains(name, keyword) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(p.classes) > 0 {
		match := false
		for _, class := range p.classes {
			if class == classLevel {
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}
	return true
}

func presetFor(planName, classLevel string) planPreset {
	for _, preset := range planPresets {
		if preset.matches(planName, classLevel) {
			return preset
		}
	}
	// Unreachable: the last table row matches everything.
	return planPresets[len(planPresets)-1]
}

// windowStart resolves a preset month/day to the start of that day.
// December resolves to the prior calendar year.
func windowStart(year, month, day int) time.Time {
	if month == 12 {
		year--
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
}

// windowEnd resolves a preset month/day to 23:59:59 on that day.
func windowEnd(year, month, day int) time.Time {
	if month == 12 {
		year--
	}
	return time.Date(year, time.Month(month), day, 23, 59, 59, 0, time.Local)
}

// snapToTenth moves a due date that is not already on the 10th to
// 23:59:59 on the 10th of its month. Monthly plans collect by the 10th.
func snapToTenth(due time.Time) time.Time {
	if due.Day() == 10 {
		return due
	}
	return time.Date(due.Year(), due.Month(), 10, 23, 59, 59, 0, due.Location())
}

func isMonthlyPlan(planName string) bool {
	return strings.Contains(strings.ToLower(planName), "month")
}

// BuildSchedule produces the installment schedule for a student and year.
// Resolution order: custom per-student schedule, then the named plan's
// weighted schedule, then the built-in presets. Graduated students get an
// empty schedule.
func BuildSchedule(rec *models.StudentFinancialRecord, year int, now time.Time) *Schedule {
	schedule := &Schedule{CurrentPeriodLabel: "-"}
	if rec == nil || rec.IsGraduated {
		return schedule
	}

	switch {
	case len(rec.CustomSchedule) > 0:
		// Custom entries are used verbatim; their amounts are trusted and
		// never apportioned.
		for i, entry := range rec.CustomSchedule {
			schedule.Items = append(schedule.Items, &models.InstallmentScheduleItem{
				Key:    fmt.Sprintf("custom-%02d", i+1),
				Label:  entry.Label,
				From:   entry.From,
				To:     entry.To,
				Amount: entry.Amount,
				Status: models.InstallmentPending,
			})
		}
	case len(rec.PlanSchedule) > 0:
		schedule.Items = buildPlanItems(rec, year)
	default:
		schedule.Items = buildPresetItems(rec, year)
	}

	finishSchedule(schedule, now)
	return schedule
}

func buildPlanItems(rec *models.StudentFinancialRecord, year int) []*models.InstallmentScheduleItem {
	baseFee := rec.FeePerYear - rec.CarryAmount
	weights := make([]int64, len(rec.PlanSchedule))
	for i, entry := range rec.PlanSchedule {
		weights[i] = entry.Weight
	}
	amounts := Apportion(baseFee, weights)

	monthly := isMonthlyPlan(rec.PaymentPlan)
	items := make([]*models.InstallmentScheduleItem, 0, len(rec.PlanSchedule))
	for i, entry := range rec.PlanSchedule {
		due := entry.To
		if monthly {
			due = snapToTenth(due)
		}
		items = append(items, &models.InstallmentScheduleItem{
			Key:    fmt.Sprintf("plan-%02d", i+1),
			Label:  entry.Label,
			From:   entry.From,
			To:     due,
			Amount: amounts[i],
			Status: models.InstallmentPending,
		})
	}

	if rec.CarryAmount > 0 {
		if len(items) == 0 {
			items = append(items, &models.InstallmentScheduleItem{
				Key:    "plan-01",
				Label:  "Brought Forward",
				From:   windowStart(year, 1, 1),
				To:     windowEnd(year, 1, 31),
				Amount: rec.CarryAmount,
				Status: models.InstallmentPending,
			})
		} else {
			items[0].Amount += rec.CarryAmount
		}
	}
	return items
}

func buildPresetItems(rec *models.StudentFinancialRecord, year int) []*models.InstallmentScheduleItem {
	preset := presetFor(rec.PaymentPlan, rec.ClassLevel)
	baseFee := rec.FeePerYear - rec.CarryAmount
	amounts := Apportion(baseFee, preset.weights)

	items := make([]*models.InstallmentScheduleItem, 0, len(preset.windows))
	for i, window := range preset.windows {
		items = append(items, &models.InstallmentScheduleItem{
			Key:    fmt.Sprintf("inst-%02d", i+1),
			Label:  preset.labels[i],
			From:   windowStart(year, window.fromMonth, window.fromDay),
			To:     windowEnd(year, window.toMonth, window.toDay),
			Amount: amounts[i],
			Status: models.InstallmentPending,
		})
	}
	if rec.CarryAmount > 0 && len(items) > 0 {
		items[0].Amount += rec.CarryAmount
	}
	return items
}

// finishSchedule derives CurrentPeriodLabel and ExpectedDueToDate from the
// items whose due date has already passed.
func finishSchedule(schedule *Schedule, now time.Time) {
	for _, item := range schedule.Items {
		if item.To.Before(now) {
			schedule.ExpectedDueToDate += item.Amount
			schedule.CurrentPeriodLabel = item.Label
		}
	}
}
