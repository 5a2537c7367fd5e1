package vector

import (
	"math"

	"gonum.org/v1/gonum/blas/blas64"
)

const tol = 1e-12

// NewVec creates new blas vector
func NewVec(data []float64) blas64.Vector {
	if data == nil {
		data = make([]float64, 0)
	}
	return blas64.Vector{
		N:    len(data),
		Inc:  1,
		Data: data,
	}
}

// CosineSim calculates cosine similarity btw the two given dense vectors;
// similarity with a zero vector is 0
func CosineSim(a, b blas64.Vector) float64 {
	normA := blas64.Nrm2(a)
	normB := blas64.Nrm2(b)
	if normA <= tol || normB <= tol {
		return 0.0
	}
	return blas64.Dot(a, b) / (normA * normB)
}

// Normalize scales vector in place to the unit length; zero vectors are left as is
func Normalize(v blas64.Vector) blas64.Vector {
	norm := blas64.Nrm2(v)
	if norm > tol {
		blas64.Scal(1/norm, v)
	}
	return v
}

// IsZeroVector returns true if all vector elements are close to 0.0
func IsZeroVector(v blas64.Vector) bool {
	return math.Abs(blas64.Asum(v)) <= tol
}
