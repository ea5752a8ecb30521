package finance

import (
	"sort"
	"strconv"
	"strings"

	"github.com/SoMApHQ/somapappv1-sub000/app/models"
)

// ComposeInput carries the raw per-year source collections the composer
// merges. Every collection is optional; missing ones behave as empty.
type ComposeInput struct {
	Year       int
	AnchorYear int

	BaseStudents      RawCollection // student registry, not year-scoped
	AnchorEnrollments RawCollection // enrollments for the anchor year
	YearEnrollments   RawCollection // enrollments for Year
	ClassFees         RawCollection // keyed by class label
	Overrides         RawCollection // per-student fee/plan overrides
	Plans             RawCollection // installment plan definitions, keyed by name
	Ledgers           RawCollection // raw payment ledgers
	CarryForward      RawCollection // debt rolled from prior years
	StudentFees       RawCollection // explicit per-student fee amounts
}

var classFieldKeys = []string{"class", "className", "class_name", "classLevel", "class_level"}
var planFieldKeys = []string{"plan", "paymentPlan", "payment_plan", "planName", "plan_name"}

// BuildFinanceStudents merges every source collection into one canonical
// financial record per student for the given year. Source collections are
// only read; all derived state lives on the returned records.
func BuildFinanceStudents(in ComposeInput) map[string]*models.StudentFinancialRecord {
	records := make(map[string]*models.StudentFinancialRecord)
	for _, id := range unionIDs(in) {
		records[id] = composeStudent(in, id)
	}
	return records
}

// unionIDs collects every student id mentioned by any source. A student
// may exist in a single collection only, e.g. a carry-forward entry with
// no live enrollment.
func unionIDs(in ComposeInput) []string {
	seen := make(map[string]bool)
	for _, collection := range []RawCollection{
		in.BaseStudents, in.AnchorEnrollments, in.YearEnrollments,
		in.Overrides, in.Ledgers, in.CarryForward, in.StudentFees,
	} {
		for id := range collection {
			seen[id] = true
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func composeStudent(in ComposeInput, id string) *models.StudentFinancialRecord {
	base := in.BaseStudents[id]
	yearEnrollment := in.YearEnrollments[id]
	anchorEnrollment := in.AnchorEnrollments[id]
	override := in.Overrides[id]
	carryDoc := in.CarryForward[id]

	rec := &models.StudentFinancialRecord{StudentID: id}
	rec.FirstName = stringField(base, "first_name", "firstName")
	rec.LastName = stringField(base, "last_name", "lastName", "surname")
	rec.AdmissionNo = stringField(base, "admission_no", "admissionNo", "student_id", "studentId")
	if rec.AdmissionNo == "" {
		rec.AdmissionNo = stringField(yearEnrollment, "admission_no", "admissionNo")
	}

	rec.ClassLevel = resolveClassLevel(in, base, yearEnrollment, anchorEnrollment)
	rec.IsGraduated = rec.ClassLevel == ClassGraduated
	classDefaults := in.ClassFees[rec.ClassLevel]

	rec.PaymentPlan = resolvePlanName(yearEnrollment, override, classDefaults, base)

	carry := coerceAmount(fieldValue(carryDoc, amountKeys...))
	if carry < 0 {
		carry = 0
	}

	planDef := in.Plans[rec.PaymentPlan]
	rec.PlanSchedule = scheduleEntries(fieldValue(planDef, "schedule", "entries"))
	rec.CustomSchedule = scheduleEntries(fieldValue(override, "customSchedule", "custom_schedule"))

	baseFee := resolveBaseFee(in, id, override, classDefaults, base, rec.PlanSchedule)

	rec.Payments = resolvePayments(in, id, base, rec)

	rec.HasYearData = yearEnrollment != nil || override != nil ||
		classDefaults != nil || carry > 0 || len(rec.Payments) > 0

	if rec.IsGraduated {
		// Graduated students carry no fee obligation in later years.
		rec.BaseFee = 0
		rec.CarryAmount = 0
		rec.FeePerYear = 0
		return rec
	}

	rec.BaseFee = baseFee
	rec.CarryAmount = carry
	rec.FeePerYear = baseFee + carry
	// PreviousDebt stays zero; carry-forward debt is folded into
	// FeePerYear above.
	return rec
}

// resolveClassLevel prefers the year enrollment's class; otherwise the
// anchor-year class (enrollment, else base record) shifted forward by the
// year delta.
func resolveClassLevel(in ComposeInput, base, yearEnrollment, anchorEnrollment map[string]interface{}) string {
	if class := stringField(yearEnrollment, classFieldKeys...); class != "" {
		return NormalizeClass(class)
	}
	anchorClass := stringField(anchorEnrollment, classFieldKeys...)
	if anchorClass == "" {
		anchorClass = stringField(base, classFieldKeys...)
	}
	if anchorClass == "" {
		return ""
	}
	return ShiftClass(anchorClass, in.Year-in.AnchorYear)
}

func resolvePlanName(yearEnrollment, override, classDefaults, base map[string]interface{}) string {
	for _, doc := range []map[string]interface{}{yearEnrollment, override} {
		if plan := stringField(doc, planFieldKeys...); plan != "" {
			return plan
		}
	}
	if plan := stringField(classDefaults, "plan", "defaultPlan", "default_plan", "planName"); plan != "" {
		return plan
	}
	return stringField(base, planFieldKeys...)
}

// resolveBaseFee walks the fee precedence chain: explicit per-student fee,
// override fee, class default, base-record fee fields, and finally the
// summed amounts of the resolved plan schedule.
func resolveBaseFee(in ComposeInput, id string, override, classDefaults, base map[string]interface{}, planSchedule []models.ScheduleEntry) int64 {
	resolvers := []func() int64{
		func() int64 { return explicitStudentFee(in, id) },
		func() int64 { return coerceAmount(fieldValue(override, "feePerYear", "fee_per_year", "fee", "amount")) },
		func() int64 { return coerceAmount(fieldValue(classDefaults, "amount", "fee", "feePerYear")) },
		func() int64 { return coerceAmount(fieldValue(base, "feePerYear", "fee_per_year", "fee")) },
		func() int64 {
			var total int64
			for _, entry := range planSchedule {
				total += entry.Amount
			}
			return total
		},
	}
	for _, resolve := range resolvers {
		if fee := resolve(); fee > 0 {
			return fee
		}
	}
	return 0
}

// explicitStudentFee reads the per-student fee collection, including the
// legacy nested {fees: {"<year>": amount}} shape.
func explicitStudentFee(in ComposeInput, id string) int64 {
	doc := in.StudentFees[id]
	if doc == nil {
		return 0
	}
	if fee := coerceAmount(fieldValue(doc, amountKeys...)); fee > 0 {
		return fee
	}
	if nested, ok := doc["fees"].(map[string]interface{}); ok {
		if fee := coerceAmount(nested[strconv.Itoa(in.Year)]); fee > 0 {
			return fee
		}
	}
	return 0
}

// resolvePayments locates the student's raw ledger entries, falls back to
// the base record's own payments when the ledger is empty, then dedupes
// and normalizes them for the target year.
func resolvePayments(in ComposeInput, id string, base map[string]interface{}, rec *models.StudentFinancialRecord) map[string]models.PaymentRecord {
	raw := ledgerEntries(in.Ledgers[id], in.Year)
	if len(raw) == 0 {
		if fallback, ok := fieldValue(base, "payments").(map[string]interface{}); ok {
			raw = fallback
		}
	}
	if len(raw) == 0 {
		return nil
	}
	ref := rec.AdmissionNo
	if ref == "" {
		ref = id
	}
	return NormalizePayments(DedupePayments(raw, in.Year, ref), in.Year)
}

// ledgerEntries digs payment entries out of the shapes ledger documents
// arrive in: a year bucket holding payments/entries/records, the same
// sub-maps at the top level, or the document itself as a flat entry map.
func ledgerEntries(doc map[string]interface{}, year int) map[string]interface{} {
	if doc == nil {
		return nil
	}
	scope := doc
	if bucket, ok := doc[strconv.Itoa(year)].(map[string]interface{}); ok {
		scope = bucket
	}
	for _, key := range []string{"payments", "entries", "records"} {
		if nested, ok := scope[key].(map[string]interface{}); ok {
			return nested
		}
	}
	if looksLikeEntryMap(scope) {
		return scope
	}
	return nil
}

// looksLikeEntryMap reports whether every value is itself an object, i.e.
// the map is a flat id-to-payment ledger rather than a wrapper document.
func looksLikeEntryMap(doc map[string]interface{}) bool {
	if len(doc) == 0 {
		return false
	}
	for _, value := range doc {
		if _, ok := value.(map[string]interface{}); !ok {
			return false
		}
	}
	return true
}

// fieldValue returns the first present key's value from a document.
func fieldValue(doc map[string]interface{}, keys ...string) interface{} {
	for _, key := range keys {
		if doc == nil {
			return nil
		}
		if value, ok := doc[key]; ok && value != nil {
			return value
		}
	}
	return nil
}

// scheduleEntries coerces a raw schedule array into typed entries.
func scheduleEntries(value interface{}) []models.ScheduleEntry {
	list, ok := value.([]interface{})
	if !ok {
		return nil
	}
	entries := make([]models.ScheduleEntry, 0, len(list))
	for _, item := range list {
		raw, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		entry := models.ScheduleEntry{
			Label:  stringField(raw, "label", "name"),
			Amount: coerceAmount(fieldValue(raw, "amount")),
			Weight: coerceAmount(fieldValue(raw, "weight")),
		}
		if from, ok := coerceTime(fieldValue(raw, "from", "fromTS", "start")); ok {
			entry.From = from
		}
		if to, ok := coerceTime(fieldValue(raw, "to", "toTS", "end", "due")); ok {
			entry.To = to
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil
	}
	return entries
}

// normalizeKey lowercases and trims an identifier for loose matching.
func normalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
