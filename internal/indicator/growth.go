package indicator

import (
	"fmt"
	"math"
)

// GrowthRates returns (v[i]-v[i-1])/v[i-1] for each consecutive pair.
// The first entry is 0 so the result lines up with values.
func GrowthRates(values []float64) []float64 {
	if len(values) <= 1 {
		return []float64{}
	}

	result := make([]float64, 0, len(values))
	result = append(result, 0)
	for i := 1; i < len(values); i++ {
		result = append(result, (values[i]-values[i-1])/values[i-1])
	}
	return result
}

// GrowthRate returns (cur-prev)/prev. ok is false when prev is zero or the
// rate is not finite.
func GrowthRate(prev, cur float64) (rate float64, ok bool) {
	if prev == 0 {
		return 0, false
	}
	rate = (cur - prev) / prev
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, false
	}
	return rate, true
}

// GrowthRateLabels formats growth rates as percentages ("12.34%"). The first
// entry and undefined rates stay blank.
func GrowthRateLabels(values []float64) []string {
	if len(values) <= 1 {
		return []string{}
	}
	labels := make([]string, len(values))
	for i := 1; i < len(values); i++ {
		if rate, ok := GrowthRate(values[i-1], values[i]); ok {
			labels[i] = fmt.Sprintf("%.2f%%", 100*rate)
		}
	}
	return labels
}

// Mean returns the arithmetic mean, 0 for an empty slice
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
