package kdgo

import (
	"fmt"
	"strings"
)

// Coordinate is the set of numeric types a Point may hold.
type Coordinate interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Point is an immutable, fixed-dimension coordinate vector.
//
// The zero Point has no dimensions.
type Point[T Coordinate] struct {
	coords []T
}

// NewPoint creates a point from the given coordinates. The slice is copied.
func NewPoint[T Coordinate](coords ...T) Point[T] {
	c := make([]T, len(coords))
	copy(c, coords)
	return Point[T]{coords: c}
}

// Dims returns the number of dimensions.
func (p Point[T]) Dims() int { return len(p.coords) }

// At returns the coordinate in dimension i (zero based).
func (p Point[T]) At(i int) (T, error) {
	if i < 0 || i >= len(p.coords) {
		var zero T
		return zero, &ErrIndexOutOfRange{Index: i, Dims: len(p.coords)}
	}
	return p.coords[i], nil
}

// Coords returns a copy of the coordinates.
func (p Point[T]) Coords() []T {
	c := make([]T, len(p.coords))
	copy(c, p.coords)
	return c
}

// SquaredDistance returns the squared Euclidean distance between p and other.
func (p Point[T]) SquaredDistance(other Point[T]) (float64, error) {
	if len(p.coords) != len(other.coords) {
		return 0, &ErrDimensionMismatch{Expected: len(p.coords), Actual: len(other.coords)}
	}
	return p.squaredDistance(other), nil
}

// squaredDistance assumes equal dimensions.
func (p Point[T]) squaredDistance(other Point[T]) float64 {
	floating := isFloat[T]()
	var dist float64
	for i, c := range p.coords {
		d := coordDelta(c, other.coords[i], floating)
		dist += d * d
	}
	return dist
}

// axisDelta returns p[axis] - q[axis].
func (p Point[T]) axisDelta(q Point[T], axis int) float64 {
	return coordDelta(p.coords[axis], q.coords[axis], isFloat[T]())
}

// isFloat reports whether T is a floating-point type.
func isFloat[T Coordinate]() bool {
	var one T = 1
	return one/2 != 0
}

// coordDelta returns a - b. Integer differences are taken in 64-bit
// two's complement before conversion, so distinct coordinates never
// produce a zero delta.
func coordDelta[T Coordinate](a, b T, floating bool) float64 {
	if floating {
		return float64(a) - float64(b)
	}
	if a >= b {
		return float64(uint64(a) - uint64(b))
	}
	return -float64(uint64(b) - uint64(a))
}

// String formats the point as "(x, y, ...)".
func (p Point[T]) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, c := range p.coords {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprint(&b, c)
	}
	b.WriteByte(')')
	return b.String()
}
