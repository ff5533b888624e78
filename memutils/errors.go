package memutils

import "github.com/pkg/errors"

// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
var PowerOfTwoError error = errors.New("number must be a power of two")

// DivisibilityError is the error returned from CheckDivisible if the dividend is not an exact multiple of the divisor
var DivisibilityError error = errors.New("number must divide evenly")
