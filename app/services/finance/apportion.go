package finance

import "sort"

// Apportion splits an integer total across weighted buckets with an exact
// sum guarantee. Each bucket gets the floor of its proportional share; the
// rounding remainder is handed out one unit at a time to buckets in
// descending weight order (original order wins on equal weight). This is
// the only place amounts are rounded.
func Apportion(total int64, weights []int64) []int64 {
	out := make([]int64, len(weights))
	if total <= 0 || len(weights) == 0 {
		return out
	}

	var weightSum int64
	for _, w := range weights {
		if w > 0 {
			weightSum += w
		}
	}
	if weightSum == 0 {
		return out
	}

	var assigned int64
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		out[i] = w * total / weightSum
		assigned += out[i]
	}

	remainder := total - assigned
	if remainder <= 0 {
		return out
	}

	order := make([]int, len(weights))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return weights[order[a]] > weights[order[b]]
	})
	for _, idx := range order {
		if remainder == 0 {
			break
		}
		if weights[idx] <= 0 {
			continue
		}
		out[idx]++
		remainder--
	}
	return out
}

// sum adds up a slice of amounts.
func sum(amounts []int64) int64 {
	var total int64
	for _, a := range amounts {
		total += a
	}
	return total
}
