// Package matutils implements utility function for working with mat.Matrix
// structs and gonum vector types
package matutils

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Format formats a matrix for printing
func Format(X mat.Matrix) string {
	fa := mat.Formatted(X, mat.Prefix(""), mat.Squeeze())
	return fmt.Sprintf("%v", fa)
}

// VecFilled returns a vector of length elements, each equal to value
func VecFilled(length int, value float64) *mat.VecDense {
	values := make([]float64, length)
	for i := range values {
		values[i] = value
	}
	return mat.NewVecDense(length, values)
}

// AppendR3 appends the x, y, and z components of each vector to dst
func AppendR3(dst []float64, vecs ...r3.Vec) []float64 {
	for _, v := range vecs {
		dst = append(dst, v.X, v.Y, v.Z)
	}
	return dst
}

// AppendQuat appends the components of q to dst with the real part
// last, in x, y, z, w order
func AppendQuat(dst []float64, q quat.Number) []float64 {
	return append(dst, q.Imag, q.Jmag, q.Kmag, q.Real)
}
