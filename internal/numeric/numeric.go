// Package numeric holds the small log-domain helpers shared by training,
// sampling and scoring.
package numeric

import "math"

// NegInf is the log-domain zero.
var NegInf = math.Inf(-1)

// LogSumExp returns log(sum(exp(xs))) computed stably by subtracting the
// maximum before exponentiating. An empty or all -Inf input returns -Inf.
func LogSumExp(xs []float64) float64 {
	maxVal := NegInf
	for _, x := range xs {
		if x > maxVal {
			maxVal = x
		}
	}
	if math.IsInf(maxVal, -1) {
		return NegInf
	}
	sum := 0.0
	for _, x := range xs {
		sum += math.Exp(x - maxVal)
	}
	return maxVal + math.Log(sum)
}

// NormalizeLogInPlace shifts xs so that exp(xs) sums to one, returning the
// normalizer log(sum(exp(xs))). All -Inf input is left untouched.
func NormalizeLogInPlace(xs []float64) float64 {
	lse := LogSumExp(xs)
	if math.IsInf(lse, -1) {
		return lse
	}
	for i := range xs {
		xs[i] -= lse
	}
	return lse
}

// SoftmaxFromLog writes exp-normalized probabilities of the log-domain
// values xs into dst and returns the normalizer. dst and xs must have the
// same length; dst may alias xs.
func SoftmaxFromLog(dst, xs []float64) float64 {
	lse := LogSumExp(xs)
	if math.IsInf(lse, -1) {
		for i := range dst {
			dst[i] = 0
		}
		return lse
	}
	for i, x := range xs {
		dst[i] = math.Exp(x - lse)
	}
	return lse
}
