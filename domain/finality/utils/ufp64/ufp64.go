// Package ufp64 implements unsigned fixed-point numbers with eight decimal
// places stored in a uint64. Intermediate results are computed in 256 bits
// so that products and quotients are exact before being floored.
package ufp64

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// UFP64 is an unsigned fixed-point number. The value v represents v / Unit.
type UFP64 uint64

// Decimals is the number of decimal places of a UFP64.
const Decimals = 8

// Unit is the UFP64 representation of 1.
const Unit UFP64 = 100_000_000

var (
	// ErrOverflow is returned when a result doesn't fit in 64 bits.
	ErrOverflow = errors.New("ufp64 overflow")

	// ErrDivisionByZero is returned when dividing by zero.
	ErrDivisionByZero = errors.New("ufp64 division by zero")

	unit256 = uint256.NewInt(uint64(Unit))
)

func fromUint256(x *uint256.Int) (UFP64, error) {
	if !x.IsUint64() {
		return 0, errors.WithStack(ErrOverflow)
	}
	return UFP64(x.Uint64()), nil
}

// FromUint converts an integer to its fixed-point representation.
func FromUint(x uint64) (UFP64, error) {
	result := new(uint256.Int).Mul(uint256.NewInt(x), unit256)
	return fromUint256(result)
}

// ToUint returns the integer part of x.
func (x UFP64) ToUint() uint64 {
	return uint64(x / Unit)
}

// Add returns x + y.
func Add(x, y UFP64) (UFP64, error) {
	sum := x + y
	if sum < x {
		return 0, errors.WithStack(ErrOverflow)
	}
	return sum, nil
}

// Mul returns x * y, floored to eight decimal places.
func Mul(x, y UFP64) (UFP64, error) {
	result := new(uint256.Int).Mul(uint256.NewInt(uint64(x)), uint256.NewInt(uint64(y)))
	result.Div(result, unit256)
	return fromUint256(result)
}

// MulByUint returns x * y.
func MulByUint(x UFP64, y uint64) (UFP64, error) {
	result := new(uint256.Int).Mul(uint256.NewInt(uint64(x)), uint256.NewInt(y))
	return fromUint256(result)
}

// Div returns x / y, floored to eight decimal places.
func Div(x, y UFP64) (UFP64, error) {
	if y == 0 {
		return 0, errors.WithStack(ErrDivisionByZero)
	}
	result := new(uint256.Int).Mul(uint256.NewInt(uint64(x)), unit256)
	result.Div(result, uint256.NewInt(uint64(y)))
	return fromUint256(result)
}

// DivUints returns the fixed-point quotient x / y of two integers, floored
// to eight decimal places.
func DivUints(x, y uint64) (UFP64, error) {
	if y == 0 {
		return 0, errors.WithStack(ErrDivisionByZero)
	}
	result := new(uint256.Int).Mul(uint256.NewInt(x), unit256)
	result.Div(result, uint256.NewInt(y))
	return fromUint256(result)
}

// String returns x in decimal notation with all eight decimal places.
func (x UFP64) String() string {
	return fmt.Sprintf("%d.%08d", uint64(x/Unit), uint64(x%Unit))
}

// Parse parses a non-negative decimal number with at most eight decimal
// places, such as "0.4" or "12".
func Parse(s string) (UFP64, error) {
	integerPart, fractionPart := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		integerPart, fractionPart = s[:dot], s[dot+1:]
	}
	if integerPart == "" && fractionPart == "" {
		return 0, errors.Errorf("invalid fixed-point number %q", s)
	}
	if len(fractionPart) > Decimals {
		return 0, errors.Errorf("fixed-point number %q has more than %d decimal places", s, Decimals)
	}
	if strings.ContainsAny(integerPart+fractionPart, "+-") {
		return 0, errors.Errorf("invalid fixed-point number %q", s)
	}

	var integer uint64
	if integerPart != "" {
		var err error
		integer, err = strconv.ParseUint(integerPart, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid fixed-point number %q", s)
		}
	}
	var fraction uint64
	if fractionPart != "" {
		padded := fractionPart + strings.Repeat("0", Decimals-len(fractionPart))
		var err error
		fraction, err = strconv.ParseUint(padded, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid fixed-point number %q", s)
		}
	}

	result, err := FromUint(integer)
	if err != nil {
		return 0, err
	}
	return Add(result, UFP64(fraction))
}
