package kdgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/kdgo/internal/arena"
	"github.com/hupe1980/kdgo/internal/searcher"
	"github.com/hupe1980/kdgo/resource"
)

var (
	// ErrEmptyIndex is returned when querying an index built from zero points.
	ErrEmptyIndex = errors.New("index is empty")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrResourceExhausted is returned when the node arena cannot be allocated.
	ErrResourceExhausted = errors.New("resource exhausted")

	// ErrClosed is returned when using an index after Close.
	ErrClosed = errors.New("index is closed")
)

// ErrDimensionMismatch indicates a point/query dimensionality mismatch.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrInvalidDimension indicates a point with no coordinates.
type ErrInvalidDimension struct {
	Dimension int
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d", e.Dimension)
}

// ErrIndexOutOfRange indicates a coordinate index outside [0, Dims).
type ErrIndexOutOfRange struct {
	Index int
	Dims  int
}

func (e *ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("coordinate index %d out of range [0, %d)", e.Index, e.Dims)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, searcher.ErrInvalidCapacity) {
		return fmt.Errorf("%w: %w", ErrInvalidK, err)
	}
	if errors.Is(err, resource.ErrMemoryLimitExceeded) ||
		errors.Is(err, arena.ErrArenaFull) ||
		errors.Is(err, arena.ErrCapacityTooLarge) {
		return fmt.Errorf("%w: %w", ErrResourceExhausted, err)
	}

	return err
}
