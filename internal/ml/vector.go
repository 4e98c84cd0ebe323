// Package ml holds the small statistical-learning toolkit behind both classifiers:
// a TF-IDF text vectorizer, a label encoder and a CART random forest.
package ml

import "sort"

// Vector is a read-only feature vector.
type Vector interface {
	At(i int) float64
	Len() int
}

// DenseVector stores every component.
type DenseVector []float64

func (v DenseVector) At(i int) float64 { return v[i] }
func (v DenseVector) Len() int         { return len(v) }

// SparseVector stores non-zero components only. Indices are strictly ascending.
type SparseVector struct {
	Dim     int
	Indices []int
	Values  []float64
}

func (v SparseVector) At(i int) float64 {
	k := sort.SearchInts(v.Indices, i)
	if k < len(v.Indices) && v.Indices[k] == i {
		return v.Values[k]
	}
	return 0
}

func (v SparseVector) Len() int { return v.Dim }

// NNZ returns the number of stored components.
func (v SparseVector) NNZ() int { return len(v.Indices) }
