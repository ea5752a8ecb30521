package finance

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/SoMApHQ/somapappv1-sub000/app/models"
)

// RawCollection is a document-store collection as loaded from the backing
// store: document key to untyped JSON object.
type RawCollection = map[string]map[string]interface{}

// Field aliases seen across imported ledger data. First present key wins.
var (
	amountKeys    = []string{"amount", "amountPaid", "amount_paid", "paid", "value"}
	yearKeys      = []string{"academicYear", "academic_year", "year"}
	timestampKeys = []string{"timestamp", "paidAt", "paid_at", "date", "time"}
	methodKeys    = []string{"method", "paymentMethod", "payment_method", "mode"}
	noteKeys      = []string{"note", "notes", "remark"}
	referenceKeys = []string{"referenceCode", "reference_code", "reference", "ref", "receiptNo", "receipt_no"}
)

// coerceAmount turns a raw JSON value into a whole-shilling amount.
// Unparseable or non-finite values coerce to zero.
func coerceAmount(value interface{}) int64 {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return int64(math.Floor(v))
	case int64:
		return v
	case int:
		return int64(v)
	case string:
		cleaned := strings.TrimSpace(v)
		cleaned = strings.ReplaceAll(cleaned, ",", "")
		cleaned = strings.TrimPrefix(strings.ToUpper(cleaned), "UGX")
		cleaned = strings.TrimSpace(cleaned)
		if cleaned == "" {
			return 0
		}
		if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil && !math.IsNaN(parsed) && !math.IsInf(parsed, 0) {
			return int64(math.Floor(parsed))
		}
		return 0
	default:
		return 0
	}
}

// coerceYear parses a year-like value; zero means "not present".
func coerceYear(value interface{}) int {
	switch v := value.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return 0
}

// coerceTime parses epoch numbers (seconds or milliseconds) and the date
// string layouts found in imported ledgers.
func coerceTime(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case float64:
		if v <= 0 {
			return time.Time{}, false
		}
		// Epoch values past the year 33658 in seconds are milliseconds.
		if v >= 1e12 {
			return time.UnixMilli(int64(v)), true
		}
		return time.Unix(int64(v), 0), true
	case int64:
		return coerceTime(float64(v))
	case int:
		return coerceTime(float64(v))
	case string:
		raw := strings.TrimSpace(v)
		if raw == "" {
			return time.Time{}, false
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02", "02/01/2006"} {
			if parsed, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

func stringField(entry map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if value, ok := entry[key]; ok {
			if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func amountField(entry map[string]interface{}) int64 {
	for _, key := range amountKeys {
		if value, ok := entry[key]; ok {
			if amount := coerceAmount(value); amount != 0 {
				return amount
			}
		}
	}
	return 0
}

func timestampField(entry map[string]interface{}) (time.Time, bool) {
	for _, key := range timestampKeys {
		if value, ok := entry[key]; ok {
			if ts, ok := coerceTime(value); ok {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

func yearField(entry map[string]interface{}) int {
	for _, key := range yearKeys {
		if value, ok := entry[key]; ok {
			if year := coerceYear(value); year > 0 {
				return year
			}
		}
	}
	return 0
}

// NormalizePayments cleans a raw payment map: amounts coerced, non-positive
// entries dropped, each payment's academic year resolved from an explicit
// field or else its timestamp, and entries outside targetYear filtered out
// (targetYear zero disables the filter).
func NormalizePayments(raw map[string]interface{}, targetYear int) map[string]models.PaymentRecord {
	clean := make(map[string]models.PaymentRecord)
	for key, value := range raw {
		entry, ok := value.(map[string]interface{})
		if !ok {
			continue
		}
		amount := amountField(entry)
		if amount <= 0 {
			continue
		}
		paidAt, hasTime := timestampField(entry)
		year := yearField(entry)
		if year == 0 && hasTime {
			year = paidAt.Year()
		}
		if targetYear != 0 && year != targetYear {
			continue
		}
		clean[key] = models.PaymentRecord{
			ID:        key,
			Amount:    amount,
			PaidAt:    paidAt,
			Method:    stringField(entry, methodKeys...),
			Note:      stringField(entry, noteKeys...),
			Reference: stringField(entry, referenceKeys...),
			Year:      year,
		}
	}
	return clean
}

// PaymentFingerprint builds the duplicate-detection key for a payment.
// The approval and reconciliation modules use the same fingerprint before
// crediting a payment so re-imported ledger rows cannot double-credit.
func PaymentFingerprint(year int, studentRef string, amount int64, reference, date string) string {
	return fmt.Sprintf("%d|%s|%d|%s|%s",
		year,
		strings.TrimSpace(studentRef),
		amount,
		strings.ToUpper(strings.TrimSpace(reference)),
		strings.TrimSpace(date),
	)
}

func entryFingerprint(entry map[string]interface{}, year int, studentRef string) string {
	date := ""
	if ts, ok := timestampField(entry); ok {
		date = ts.Format("2006-01-02")
	} else {
		date = stringField(entry, timestampKeys...)
	}
	return PaymentFingerprint(year, studentRef, amountField(entry), stringField(entry, referenceKeys...), date)
}

// DedupePayments drops raw entries whose fingerprint repeats an earlier
// entry. Keys are visited in sorted order so the survivor of a duplicate
// pair is deterministic.
func DedupePayments(raw map[string]interface{}, year int, studentRef string) map[string]interface{} {
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	seen := make(map[string]bool, len(raw))
	clean := make(map[string]interface{}, len(raw))
	for _, key := range keys {
		entry, ok := raw[key].(map[string]interface{})
		if !ok {
			continue
		}
		fingerprint := entryFingerprint(entry, year, studentRef)
		if seen[fingerprint] {
			continue
		}
		seen[fingerprint] = true
		clean[key] = raw[key]
	}
	return clean
}
