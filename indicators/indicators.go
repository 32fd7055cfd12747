// Package indicators provides technical analysis transforms over price
// series. Every function returns a slice of the same length as its input;
// positions inside the warmup window are NaN.
package indicators

import (
	"fmt"
	"math"
)

// SMA is the simple moving average over a rolling window.
func SMA(close []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("sma: period must be positive, got %d", period)
	}

	out := warmup(len(close), period-1)
	sum := 0.0
	for i, v := range close {
		sum += v
		if i >= period {
			sum -= close[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out, nil
}

// EMA is the exponential moving average with multiplier 2/(period+1),
// seeded by the SMA of the first period values.
func EMA(close []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("ema: period must be positive, got %d", period)
	}

	out := warmup(len(close), period-1)
	if len(close) < period {
		return out, nil
	}

	sma := 0.0
	for i := 0; i < period; i++ {
		sma += close[i]
	}
	ema := sma / float64(period)
	out[period-1] = ema

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(close); i++ {
		ema = (close[i]-ema)*multiplier + ema
		out[i] = ema
	}
	return out, nil
}

// MACD is the difference between a fast and a slow EMA.
func MACD(close []float64, fast, slow int) ([]float64, error) {
	if fast >= slow {
		return nil, fmt.Errorf("macd: fast period %d must be below slow period %d", fast, slow)
	}

	f, err := EMA(close, fast)
	if err != nil {
		return nil, err
	}
	s, err := EMA(close, slow)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(close))
	for i := range out {
		out[i] = f[i] - s[i]
	}
	return out, nil
}

// RSI is the relative strength index: gains and losses are smoothed with an
// EMA of the given period.
func RSI(close []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("rsi: period must be positive, got %d", period)
	}

	n := len(close)
	out := warmup(n, period)
	if n <= period {
		return out, nil
	}

	// Split the one-bar diffs into up and down moves.
	up := make([]float64, n-1)
	down := make([]float64, n-1)
	for i := 1; i < n; i++ {
		diff := close[i] - close[i-1]
		if diff > 0 {
			up[i-1] = diff
		} else {
			down[i-1] = -diff
		}
	}

	avgUp, err := EMA(up, period)
	if err != nil {
		return nil, err
	}
	avgDown, err := EMA(down, period)
	if err != nil {
		return nil, err
	}

	for i := period - 1; i < n-1; i++ {
		if avgDown[i] == 0 {
			out[i+1] = 100
			continue
		}
		rs := avgUp[i] / avgDown[i]
		out[i+1] = 100 - 100/(1+rs)
	}
	return out, nil
}

// StochasticK is the fast stochastic oscillator %K.
func StochasticK(close, high, low []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("stochastic: period must be positive, got %d", period)
	}
	if len(high) != len(close) || len(low) != len(close) {
		return nil, fmt.Errorf("stochastic: series lengths differ")
	}

	out := warmup(len(close), period-1)
	for i := period - 1; i < len(close); i++ {
		hi, lo := high[i], low[i]
		for j := i - period + 1; j < i; j++ {
			hi = math.Max(hi, high[j])
			lo = math.Min(lo, low[j])
		}
		if hi == lo {
			out[i] = 50
			continue
		}
		out[i] = 100 * (close[i] - lo) / (hi - lo)
	}
	return out, nil
}

// StochasticD smooths %K with a simple moving average.
func StochasticD(k []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("stochastic: period must be positive, got %d", period)
	}

	out := warmup(len(k), len(k))
	for i := period - 1; i < len(k); i++ {
		sum, valid := 0.0, true
		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(k[j]) {
				valid = false
				break
			}
			sum += k[j]
		}
		if valid {
			out[i] = sum / float64(period)
		}
	}
	return out, nil
}

// ROC is the rate of change over period bars, in percent.
func ROC(close []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("roc: period must be positive, got %d", period)
	}

	out := warmup(len(close), period)
	for i := period; i < len(close); i++ {
		if close[i-period] == 0 {
			continue
		}
		out[i] = 100 * (close[i] - close[i-period]) / close[i-period]
	}
	return out, nil
}

// WilliamsR is the Williams %R oscillator, in [-100, 0].
func WilliamsR(close, high, low []float64, period int) ([]float64, error) {
	k, err := StochasticK(close, high, low, period)
	if err != nil {
		return nil, fmt.Errorf("williams %%R: %w", err)
	}

	for i, v := range k {
		if !math.IsNaN(v) {
			k[i] = v - 100
		}
	}
	return k, nil
}

// warmup allocates a series of length n with the first w values set to NaN.
// The remainder is zeroed; callers overwrite it.
func warmup(n, w int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n && i < w; i++ {
		out[i] = math.NaN()
	}
	return out
}
