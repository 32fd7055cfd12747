package backtest

import "math"

// AnnualReturn is the compounded yearly return growing start into end over
// the given year fraction. Zero when the period or the base is degenerate.
func AnnualReturn(start, end, years float64) float64 {
	if years <= 0 || start <= 0 || end <= 0 {
		return 0
	}
	return math.Pow(end/start, 1/years) - 1
}

// SharpeRatio is the final excess annualized return over the risk-free rate,
// divided by the sample standard deviation of the per-bar excess returns.
// Zero when the series is too short or flat.
func SharpeRatio(returns []float64, riskFree float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - riskFree
	}

	sd := stddev(excess)
	if sd == 0 {
		return 0
	}
	return excess[len(excess)-1] / sd
}

// CumMax is the running maximum of the series.
func CumMax(xs []float64) []float64 {
	out := make([]float64, len(xs))
	max := math.Inf(-1)
	for i, v := range xs {
		if v > max {
			max = v
		}
		out[i] = max
	}
	return out
}

// DrawdownSeries is the decline of profit from its running maximum,
// normalized by the peak account value. Every element is ≤ 0.
func DrawdownSeries(profit, cummax []float64, capital float64) []float64 {
	out := make([]float64, len(profit))
	for i := range profit {
		base := cummax[i] + capital
		if base == 0 {
			continue
		}
		out[i] = (profit[i] - cummax[i]) / base
	}
	return out
}

// MaxDrawdown is the most negative element of a drawdown series.
func MaxDrawdown(dd []float64) float64 {
	min := 0.0
	for _, v := range dd {
		if v < min {
			min = v
		}
	}
	return min
}

// stddev is the sample standard deviation.
func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}

	mean := 0.0
	for _, v := range xs {
		mean += v
	}
	mean /= float64(len(xs))

	ss := 0.0
	for _, v := range xs {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}
