package finance

import (
	"reflect"
	"testing"
	"time"
)

func TestCoerceAmount(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  int64
	}{
		{"json number", float64(150000), 150000},
		{"fractional floors", float64(150000.9), 150000},
		{"plain string", "150000", 150000},
		{"string with separators", "1,250,000", 1250000},
		{"string with currency prefix", "UGX 45,000", 45000},
		{"negative passes through", float64(-500), -500},
		{"garbage", "two hundred", 0},
		{"nil", nil, 0},
		{"bool", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coerceAmount(tt.value); got != tt.want {
				t.Errorf("coerceAmount(%v) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestCoerceTime(t *testing.T) {
	msEpoch := float64(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC).UnixMilli())
	got, ok := coerceTime(msEpoch)
	if !ok || got.UTC().Year() != 2026 || got.UTC().Month() != time.March {
		t.Errorf("coerceTime(ms epoch) = %v ok=%v", got, ok)
	}

	got, ok = coerceTime("2026-03-15")
	if !ok || got.Year() != 2026 || got.Day() != 15 {
		t.Errorf("coerceTime(date string) = %v ok=%v", got, ok)
	}

	if _, ok := coerceTime("not a date"); ok {
		t.Error("coerceTime accepted garbage")
	}
	if _, ok := coerceTime(nil); ok {
		t.Error("coerceTime accepted nil")
	}
}

func TestNormalizePayments(t *testing.T) {
	raw := map[string]interface{}{
		"p1": map[string]interface{}{"amount": float64(50000), "timestamp": "2026-03-01", "method": "cash"},
		"p2": map[string]interface{}{"amountPaid": "20,000", "date": "2026-07-10", "referenceCode": "rcpt-9"},
		"p3": map[string]interface{}{"amount": float64(30000), "timestamp": "2025-11-01"},              // wrong year
		"p4": map[string]interface{}{"amount": float64(-100), "timestamp": "2026-02-01"},              // non-positive
		"p5": map[string]interface{}{"amount": float64(15000), "academicYear": "2026"},                // explicit year, no timestamp
		"p6": "not an object",
	}

	clean := NormalizePayments(raw, 2026)
	if len(clean) != 3 {
		t.Fatalf("NormalizePayments kept %d entries, want 3: %v", len(clean), clean)
	}
	if clean["p1"].Amount != 50000 || clean["p1"].Method != "cash" {
		t.Errorf("p1 normalized wrong: %+v", clean["p1"])
	}
	if clean["p2"].Amount != 20000 || clean["p2"].Reference != "rcpt-9" {
		t.Errorf("p2 normalized wrong: %+v", clean["p2"])
	}
	if clean["p5"].Year != 2026 {
		t.Errorf("p5 year = %d, want 2026", clean["p5"].Year)
	}

	// No target year keeps every valid entry regardless of its year.
	all := NormalizePayments(raw, 0)
	if len(all) != 4 {
		t.Errorf("NormalizePayments without target kept %d entries, want 4", len(all))
	}
}

func TestDedupePayments(t *testing.T) {
	entry := func(amount float64, ref, date string) map[string]interface{} {
		return map[string]interface{}{"amount": amount, "referenceCode": ref, "timestamp": date}
	}
	raw := map[string]interface{}{
		"a": entry(50000, "RC-1", "2026-03-01"),
		"b": entry(50000, "rc-1 ", "2026-03-01"), // same fingerprint: case and space folded
		"c": entry(50000, "RC-2", "2026-03-01"),
		"d": entry(20000, "RC-1", "2026-03-01"),
	}

	clean := DedupePayments(raw, 2026, "ADM-001")
	if len(clean) != 3 {
		t.Fatalf("DedupePayments kept %d entries, want 3: %v", len(clean), clean)
	}
	if _, ok := clean["a"]; !ok {
		t.Error("first entry of duplicate pair should survive")
	}
	if _, ok := clean["b"]; ok {
		t.Error("later duplicate should be dropped")
	}

	// Idempotence: deduping a deduped map changes nothing.
	again := DedupePayments(clean, 2026, "ADM-001")
	if !reflect.DeepEqual(clean, again) {
		t.Errorf("DedupePayments is not idempotent: %v vs %v", clean, again)
	}
}

func TestPaymentFingerprint(t *testing.T) {
	a := PaymentFingerprint(2026, "ADM-001", 50000, " rc-7 ", "2026-03-01")
	b := PaymentFingerprint(2026, "ADM-001", 50000, "RC-7", "2026-03-01")
	if a != b {
		t.Errorf("fingerprints differ on reference case/space: %q vs %q", a, b)
	}

	c := PaymentFingerprint(2025, "ADM-001", 50000, "RC-7", "2026-03-01")
	if a == c {
		t.Error("fingerprint ignores year")
	}
	d := PaymentFingerprint(2026, "ADM-002", 50000, "RC-7", "2026-03-01")
	if a == d {
		t.Error("fingerprint ignores student reference")
	}
}
