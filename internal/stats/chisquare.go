package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// ChiSquare tests independence on an observed contingency table, applying
// Yates' continuity correction when there is one degree of freedom.
func ChiSquare(observed [][]float64) (*Result, error) {
	r := len(observed)
	if r == 0 || len(observed[0]) == 0 {
		return nil, fmt.Errorf("%s: empty table: %w", ChiSquareTest, ErrInsufficientData)
	}
	c := len(observed[0])
	rowSum := make([]float64, r)
	colSum := make([]float64, c)
	for i, row := range observed {
		if len(row) != c {
			return nil, fmt.Errorf("%s: ragged table", ChiSquareTest)
		}
		rowSum[i] = floats.Sum(row)
		for j, v := range row {
			colSum[j] += v
		}
	}
	total := floats.Sum(rowSum)
	dof := float64((r - 1) * (c - 1))
	res := &Result{Test: ChiSquareTest, DF: dof, N: int(total)}
	if dof == 0 {
		res.PValue = 1
		return res, nil
	}
	var chi2 float64
	for i := range observed {
		for j, o := range observed[i] {
			e := rowSum[i] * colSum[j] / total
			if e == 0 {
				return nil, fmt.Errorf("%s: zero expected frequency: %w", ChiSquareTest, ErrInsufficientData)
			}
			d := o - e
			if dof == 1 {
				d = math.Copysign(math.Max(0, math.Abs(d)-math.Min(0.5, math.Abs(d))), d)
			}
			chi2 += d * d / e
		}
	}
	res.Statistic = chi2
	res.PValue = distuv.ChiSquared{K: dof}.Survival(chi2)
	return res, nil
}
