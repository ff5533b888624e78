package memutils

import (
	"math/bits"

	cerrors "github.com/cockroachdb/errors"
)

type Number interface {
	~int | ~uint | ~uint32
}

func CheckPow2[T Number](number T, name string) error {
	if number == 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

func CheckDivisible[T Number](dividend, divisor T, name string) error {
	if divisor == 0 || dividend%divisor != 0 {
		return cerrors.Wrapf(DivisibilityError, "%s: %d is not a multiple of %d", name, dividend, divisor)
	}
	return nil
}

// Log2 returns the base-2 logarithm of value, rounded down. value must be greater than zero.
func Log2(value uint) int {
	return bits.Len(value) - 1
}

func AlignUp(value uint, alignment uint) uint {
	return (value + alignment - 1) &^ (alignment - 1)
}

func AlignDown(value uint, alignment uint) uint {
	return value &^ (alignment - 1)
}
