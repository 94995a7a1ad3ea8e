package kdgo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoint_At(t *testing.T) {
	p := NewPoint(1.5, -2.0, 3.0)

	assert.Equal(t, 3, p.Dims())
	for i, want := range []float64{1.5, -2.0, 3.0} {
		got, err := p.At(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	for _, i := range []int{-1, 3} {
		_, err := p.At(i)
		var oor *ErrIndexOutOfRange
		require.ErrorAs(t, err, &oor)
		assert.Equal(t, i, oor.Index)
		assert.Equal(t, 3, oor.Dims)
	}
}

func TestPoint_Immutable(t *testing.T) {
	coords := []int{1, 2}
	p := NewPoint(coords...)
	coords[0] = 99

	c := p.Coords()
	c[1] = 99

	assert.Equal(t, []int{1, 2}, p.Coords())
}

func TestPoint_SquaredDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Point[float64]
		expected float64
	}{
		{"Simple", NewPoint(1.0, 2.0, 3.0), NewPoint(4.0, 5.0, 6.0), 27},
		{"Identical", NewPoint(1.0, 2.0), NewPoint(1.0, 2.0), 0},
		{"Mixed", NewPoint(1.0, -1.0), NewPoint(-1.0, 1.0), 8},
		{"Single", NewPoint(2.0), NewPoint(-3.0), 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.a.SquaredDistance(tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)

			back, err := tt.b.SquaredDistance(tt.a)
			require.NoError(t, err)
			assert.Equal(t, got, back, "distance must be symmetric")
		})
	}
}

func TestPoint_SquaredDistanceUnsigned(t *testing.T) {
	a := NewPoint[uint8](1, 200)
	b := NewPoint[uint8](3, 10)

	got, err := a.SquaredDistance(b)
	require.NoError(t, err)
	assert.Equal(t, 4.0+190.0*190.0, got)
}

func TestPoint_SquaredDistanceWideIntegers(t *testing.T) {
	t.Run("int64 above 2^53", func(t *testing.T) {
		got, err := NewPoint[int64](1<<53, 0).SquaredDistance(NewPoint[int64](1<<53+1, 0))
		require.NoError(t, err)
		assert.Equal(t, 1.0, got)
	})

	t.Run("int64 extremes", func(t *testing.T) {
		a := NewPoint[int64](math.MaxInt64)
		b := NewPoint[int64](math.MinInt64)
		got, err := a.SquaredDistance(b)
		require.NoError(t, err)
		want := math.Pow(2, 64) - 1
		assert.Equal(t, want*want, got)
		assert.Equal(t, -(math.Pow(2, 64) - 1), b.axisDelta(a, 0))
	})

	t.Run("uint64 near max", func(t *testing.T) {
		a := NewPoint[uint64](math.MaxUint64, 7)
		b := NewPoint[uint64](math.MaxUint64-1, 7)
		got, err := a.SquaredDistance(b)
		require.NoError(t, err)
		assert.Equal(t, 1.0, got)
		assert.Equal(t, -1.0, b.axisDelta(a, 0))
	})

	t.Run("float keeps fraction", func(t *testing.T) {
		got, err := NewPoint(0.5).SquaredDistance(NewPoint(0.25))
		require.NoError(t, err)
		assert.Equal(t, 0.0625, got)
	})
}

func TestPoint_SquaredDistanceMismatch(t *testing.T) {
	_, err := NewPoint(1, 2).SquaredDistance(NewPoint(1, 2, 3))

	var dm *ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 2, dm.Expected)
	assert.Equal(t, 3, dm.Actual)
}

func TestPoint_String(t *testing.T) {
	assert.Equal(t, "(2, 3)", NewPoint(2, 3).String())
	assert.Equal(t, "(1.5, -0.25, 7)", NewPoint(1.5, -0.25, 7.0).String())
	assert.Equal(t, "()", Point[int]{}.String())
}
