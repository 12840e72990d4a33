package mcubes

import (
	"fmt"
	"math"
)

// Field is a scalar field sampled on a uniform N×N×N lattice.
// Samples are stored densely with index z*N*N + y*N + x.
type Field struct {
	n    int
	data []float64
}

// NewField allocates a zeroed field with n samples per axis.
func NewField(n int) (*Field, error) {
	if n < 2 {
		return nil, fmt.Errorf("new field of size %d: %w", n, ErrInvalidGridSize)
	}
	if _, err := VertexCapacity(n); err != nil {
		return nil, fmt.Errorf("new field of size %d: %w", n, err)
	}
	if fn := float64(n); fn*fn*fn > MaxSamples {
		return nil, fmt.Errorf("new field of size %d: %w", n, ErrOutOfMemory)
	}
	return &Field{n: n, data: make([]float64, n*n*n)}, nil
}

// FieldFromSamples wraps an existing sample slice of length n³. The field
// takes ownership of data.
func FieldFromSamples(n int, data []float64) (*Field, error) {
	if n < 2 {
		return nil, fmt.Errorf("field from samples of size %d: %w", n, ErrInvalidGridSize)
	}
	if len(data) != n*n*n {
		return nil, fmt.Errorf("field from samples: got %d samples, want %d", len(data), n*n*n)
	}
	return &Field{n: n, data: data}, nil
}

// Size returns the number of samples per axis.
func (f *Field) Size() int { return f.n }

// Cells returns the number of cells per axis, Size()-1.
func (f *Field) Cells() int { return f.n - 1 }

// Samples returns the underlying sample slice. It is not a copy.
func (f *Field) Samples() []float64 { return f.data }

// Index returns the position of lattice point (x,y,z) in the sample slice.
func (f *Field) Index(x, y, z int) int {
	return x + f.n*(y+f.n*z)
}

// At returns the sample at lattice point (x,y,z).
func (f *Field) At(x, y, z int) float64 {
	f.mustContain(x, y, z)
	return f.data[f.Index(x, y, z)]
}

// AtV3i returns the sample at lattice point v.
func (f *Field) AtV3i(v V3i) float64 { return f.At(v[0], v[1], v[2]) }

// Set sets the sample at lattice point (x,y,z).
func (f *Field) Set(x, y, z int, v float64) {
	f.mustContain(x, y, z)
	f.data[f.Index(x, y, z)] = v
}

// MinMax returns the smallest and largest sample of the field.
func (f *Field) MinMax() (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range f.data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func (f *Field) mustContain(x, y, z int) {
	if uint(x) >= uint(f.n) || uint(y) >= uint(f.n) || uint(z) >= uint(f.n) {
		panic(fmt.Sprintf("lattice point (%d,%d,%d) out of field of size %d", x, y, z, f.n))
	}
}
