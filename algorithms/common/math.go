package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic statistical functions shared across the pipeline, using gonum for robustness

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// Variance calculates the sample variance of a slice using gonum
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return stat.Variance(data, nil)
}

// StandardDeviation calculates the sample standard deviation
func StandardDeviation(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return math.Sqrt(Variance(data))
}

// RMS calculates root mean square
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	sumSquares := 0.0
	for _, val := range data {
		sumSquares += val * val
	}

	return math.Sqrt(sumSquares / float64(len(data)))
}

// Max returns the maximum value of a non-empty slice
func Max(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Max(data)
}

// Normalize normalizes data to zero mean and unit variance
func Normalize(data []float64) []float64 {
	if len(data) == 0 {
		return data
	}

	mean := Mean(data)
	std := StandardDeviation(data)

	if std < 1e-10 {
		// Handle constant data
		normalized := make([]float64, len(data))
		for i, val := range data {
			normalized[i] = val - mean
		}
		return normalized
	}

	normalized := make([]float64, len(data))
	for i, val := range data {
		normalized[i] = (val - mean) / std
	}

	return normalized
}

// UnitNormalize scales data so that its L2 norm is 1
func UnitNormalize(data []float64) []float64 {
	if len(data) == 0 {
		return data
	}

	norm := floats.Norm(data, 2)
	if norm < 1e-10 {
		return data
	}

	normalized := make([]float64, len(data))
	for i, val := range data {
		normalized[i] = val / norm
	}

	return normalized
}

// EuclideanDistance returns the L2 distance between two equal-length vectors
func EuclideanDistance(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}
	return floats.Distance(a, b, 2)
}
