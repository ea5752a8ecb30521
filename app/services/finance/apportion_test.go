package finance

import (
	"reflect"
	"testing"
)

func TestApportion(t *testing.T) {
	tests := []struct {
		name    string
		total   int64
		weights []int64
		want    []int64
	}{
		{
			name:    "remainder goes to first top weight",
			total:   100,
			weights: []int64{1, 1, 1},
			want:    []int64{34, 33, 33},
		},
		{
			name:    "exact split with no remainder",
			total:   100,
			weights: []int64{3, 1},
			want:    []int64{75, 25},
		},
		{
			name:    "remainder prefers heavier bucket",
			total:   10,
			weights: []int64{1, 2},
			want:    []int64{3, 7},
		},
		{
			name:    "equal weights keep original order on ties",
			total:   10,
			weights: []int64{1, 1, 1},
			want:    []int64{4, 3, 3},
		},
		{
			name:    "zero weights get nothing",
			total:   50,
			weights: []int64{0, 1, 0},
			want:    []int64{0, 50, 0},
		},
		{
			name:    "all zero weights",
			total:   50,
			weights: []int64{0, 0},
			want:    []int64{0, 0},
		},
		{
			name:    "empty weights",
			total:   50,
			weights: nil,
			want:    []int64{},
		},
		{
			name:    "zero total",
			total:   0,
			weights: []int64{1, 2},
			want:    []int64{0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apportion(tt.total, tt.weights)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Apportion(%d, %v) = %v, want %v", tt.total, tt.weights, got, tt.want)
			}
		})
	}
}

func TestApportionSumIsExact(t *testing.T) {
	totals := []int64{1, 7, 99, 100, 1000, 120000, 999999}
	weightSets := [][]int64{
		{1}, {1, 1}, {1, 2, 3}, {7, 7, 7, 7}, {5, 0, 3, 11}, {1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	}

	for _, total := range totals {
		for _, weights := range weightSets {
			got := Apportion(total, weights)
			if len(got) != len(weights) {
				t.Fatalf("Apportion(%d, %v) returned %d buckets, want %d", total, weights, len(got), len(weights))
			}
			if sum(got) != total {
				t.Errorf("Apportion(%d, %v) sums to %d, want %d", total, weights, sum(got), total)
			}
		}
	}
}
