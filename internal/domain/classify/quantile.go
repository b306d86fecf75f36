// Package classify implements quantile classification of numeric values
// into colour buckets.
package classify

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// Breaks holds the k-1 ascending interior break points of a k-class
// quantile classification. Break points may repeat when the input has fewer
// distinct values than classes.
type Breaks []float64

// Classes returns the number of buckets the breaks describe.
func (b Breaks) Classes() int { return len(b) + 1 }

// ComputeBreaks sorts values and returns k-1 break points such that every
// bucket holds about the same number of values. Break i sits at the
// (i/k)-quantile, linearly interpolated between the closest ranks. NaNs and
// infinities are ignored.
func ComputeBreaks(values []float64, k int) (Breaks, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidClasses, k)
	}
	sorted := sortedFinite(values)
	if len(sorted) == 0 {
		return nil, ErrInsufficientData
	}
	breaks := make(Breaks, k-1)
	for i := 1; i < k; i++ {
		breaks[i-1] = quantile(sorted, float64(i)/float64(k))
	}
	return breaks, nil
}

// Limits returns k+1 class limits: the minimum, the k-1 breaks and the
// maximum. This is the shape colour-ramp legends expect.
func Limits(values []float64, k int) ([]float64, error) {
	breaks, err := ComputeBreaks(values, k)
	if err != nil {
		return nil, err
	}
	sorted := sortedFinite(values)
	limits := make([]float64, 0, k+1)
	limits = append(limits, sorted[0])
	limits = append(limits, breaks...)
	limits = append(limits, sorted[len(sorted)-1])
	return limits, nil
}

// Classify returns the 0-based bucket of v. Values below the lowest break
// land in bucket 0, values at or above the highest break in the last bucket.
// A value equal to a break point belongs to the bucket above it.
func Classify(v float64, breaks Breaks) int {
	if math.IsNaN(v) {
		return 0
	}
	return sort.Search(len(breaks), func(i int) bool { return breaks[i] > v })
}

func sortedFinite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out
}

// quantile interpolates the q-quantile of an ascending, non-empty slice.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
