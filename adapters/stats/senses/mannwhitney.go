package senses

import (
	"fmt"
	"math"
	"sort"

	"gomiss/domain/core"

	"gonum.org/v1/gonum/stat/distuv"
)

// MannWhitneyResult contains the two-sample rank test output
type MannWhitneyResult struct {
	UStatistic float64
	ZScore     float64
	PValue     float64
	N1         int
	N2         int
}

// MannWhitney performs the two-sided Mann-Whitney U test comparing the
// distributions of two independent samples. Uses the standard normal
// approximation with tie correction, no continuity correction.
// Callers must pass NaN-free samples.
func MannWhitney(x, y []float64) (MannWhitneyResult, error) {
	n1 := len(x)
	n2 := len(y)
	if n1 == 0 {
		return MannWhitneyResult{}, core.NewEmptySubsetError("first sample")
	}
	if n2 == 0 {
		return MannWhitneyResult{}, core.NewEmptySubsetError("second sample")
	}

	combined := make([]float64, 0, n1+n2)
	combined = append(combined, x...)
	combined = append(combined, y...)
	allRanks := ranks(combined)

	r1 := 0.0
	for i := 0; i < n1; i++ {
		r1 += allRanks[i]
	}
	u1 := r1 - float64(n1)*float64(n1+1)/2

	n := float64(n1 + n2)
	mu := float64(n1) * float64(n2) / 2

	// Tie correction: sigma^2 = n1*n2/12 * ((n+1) - sum(t^3-t)/(n*(n-1)))
	tieSum := 0.0
	sorted := make([]float64, len(combined))
	copy(sorted, combined)
	sort.Float64s(sorted)
	i := 0
	for i < len(sorted) {
		j := i + 1
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		t := float64(j - i)
		tieSum += t*t*t - t
		i = j
	}

	sigma2 := float64(n1) * float64(n2) / 12 * ((n + 1) - tieSum/(n*(n-1)))
	if sigma2 <= 0 {
		return MannWhitneyResult{}, fmt.Errorf("%w: all ranks tied", core.ErrZeroVariance)
	}

	z := (u1 - mu) / math.Sqrt(sigma2)
	pValue := 2 * distuv.UnitNormal.Survival(math.Abs(z))
	if pValue > 1 {
		pValue = 1
	}

	return MannWhitneyResult{
		UStatistic: u1,
		ZScore:     z,
		PValue:     pValue,
		N1:         n1,
		N2:         n2,
	}, nil
}

// ranks converts values to 1-based ranks, averaging within tie groups
func ranks(data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return []float64{}
	}

	type pair struct {
		value float64
		index int
	}

	pairs := make([]pair, n)
	for i, val := range data {
		pairs[i] = pair{value: val, index: i}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].value < pairs[j].value
	})

	out := make([]float64, n)

	i := 0
	for i < n {
		j := i + 1
		for j < n && pairs[j].value == pairs[i].value {
			j++
		}

		groupSize := j - i
		avgRank := float64(i+1) + float64(groupSize-1)/2.0

		for k := i; k < j; k++ {
			out[pairs[k].index] = avgRank
		}

		i = j
	}

	return out
}
