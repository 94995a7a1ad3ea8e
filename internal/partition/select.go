package partition

// insertionThreshold is the range length below which Select falls back to
// insertion sort.
const insertionThreshold = 12

// Select partially orders s so that s[n] holds the element of rank n under
// less. Every element before n compares not greater than s[n] and every
// element after n compares not less than s[n].
//
// Select panics if n is out of range for a non-empty s.
func Select[E any](s []E, n int, less func(a, b E) bool) {
	if len(s) == 0 {
		return
	}
	if n < 0 || n >= len(s) {
		panic("partition: rank out of range")
	}

	lo, hi := 0, len(s)-1
	for hi-lo >= insertionThreshold {
		p := partition(s, lo, hi, less)
		switch {
		case p == n:
			return
		case p < n:
			lo = p + 1
		default:
			hi = p - 1
		}
	}
	insertionSort(s, lo, hi, less)
}

// partition places a median-of-three pivot at its final position within
// s[lo:hi+1] and returns that position.
func partition[E any](s []E, lo, hi int, less func(a, b E) bool) int {
	mid := lo + (hi-lo)/2

	// Order s[lo], s[mid], s[hi] so the median lands in s[mid].
	if less(s[mid], s[lo]) {
		s[mid], s[lo] = s[lo], s[mid]
	}
	if less(s[hi], s[lo]) {
		s[hi], s[lo] = s[lo], s[hi]
	}
	if less(s[hi], s[mid]) {
		s[hi], s[mid] = s[mid], s[hi]
	}

	// Park the pivot next to the upper sentinel.
	s[mid], s[hi-1] = s[hi-1], s[mid]
	pivot := s[hi-1]

	i, j := lo, hi-1
	for {
		for i++; less(s[i], pivot); i++ {
		}
		for j--; less(pivot, s[j]); j-- {
		}
		if i >= j {
			break
		}
		s[i], s[j] = s[j], s[i]
	}
	s[i], s[hi-1] = s[hi-1], s[i]
	return i
}

func insertionSort[E any](s []E, lo, hi int, less func(a, b E) bool) {
	for i := lo + 1; i <= hi; i++ {
		for j := i; j > lo && less(s[j], s[j-1]); j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
