package simulate

// keepFirst partitions rows by key and keeps, per key, the row that ranks
// first under before. Rows without a key are dropped. The order of rows
// does not affect the survivor as long as before is a total order.
func keepFirst[K comparable, T any](rows []T, key func(T) (K, bool), before func(a, b T) bool) map[K]T {
	survivors := make(map[K]T)
	for _, row := range rows {
		k, ok := key(row)
		if !ok {
			continue
		}
		current, seen := survivors[k]
		if !seen || before(row, current) {
			survivors[k] = row
		}
	}
	return survivors
}

// ordering helpers for nullable sort keys. Descending keys place NULL
// last, matching DESC NULLS LAST.

func desc[T int64 | float64](a, b *T) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a > *b:
		return -1
	case *a < *b:
		return 1
	}
	return 0
}

func asc[T int64 | float64](a, b *T) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}

// text treats "" as NULL
func textAsc(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	case a < b:
		return -1
	}
	return 1
}

func textDesc(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	case a > b:
		return -1
	}
	return 1
}

// first returns the first non-zero comparison
func first(cmps ...int) int {
	for _, c := range cmps {
		if c != 0 {
			return c
		}
	}
	return 0
}
