package ufp64

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

func TestDivUints(t *testing.T) {
	tests := []struct {
		x, y     uint64
		expected UFP64
	}{
		{1, 1, Unit},
		{2, 3, 66_666_666},
		{1, 3, 33_333_333},
		{3, 3, Unit},
		{0, 5, 0},
		{math.MaxUint64, math.MaxUint64, Unit},
	}
	for _, test := range tests {
		result, err := DivUints(test.x, test.y)
		if err != nil {
			t.Fatalf("DivUints(%d, %d): %+v", test.x, test.y, err)
		}
		if result != test.expected {
			t.Errorf("DivUints(%d, %d): expected %s, got %s", test.x, test.y, test.expected, result)
		}
	}

	_, err := DivUints(1, 0)
	if !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("DivUints(1, 0): expected ErrDivisionByZero, got %v", err)
	}
	_, err = DivUints(math.MaxUint64, 1)
	if !errors.Is(err, ErrOverflow) {
		t.Errorf("DivUints(MaxUint64, 1): expected ErrOverflow, got %v", err)
	}
}

func TestMulByUintAndToUint(t *testing.T) {
	twoThirds, err := DivUints(2, 3)
	if err != nil {
		t.Fatalf("DivUints: %+v", err)
	}
	product, err := MulByUint(twoThirds, 3_000_000_000)
	if err != nil {
		t.Fatalf("MulByUint: %+v", err)
	}
	// 0.66666666 * 3000000000 = 1999999980
	if product.ToUint() != 1_999_999_980 {
		t.Errorf("expected 1999999980, got %d", product.ToUint())
	}

	_, err = MulByUint(Unit, math.MaxUint64)
	if !errors.Is(err, ErrOverflow) {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
}

func TestMulAndDiv(t *testing.T) {
	half, err := Parse("0.5")
	if err != nil {
		t.Fatalf("Parse: %+v", err)
	}
	quarter, err := Mul(half, half)
	if err != nil {
		t.Fatalf("Mul: %+v", err)
	}
	if quarter != 25_000_000 {
		t.Errorf("0.5 * 0.5: expected 0.25, got %s", quarter)
	}
	two, err := Div(half, quarter)
	if err != nil {
		t.Fatalf("Div: %+v", err)
	}
	if two != 2*Unit {
		t.Errorf("0.5 / 0.25: expected 2, got %s", two)
	}
	_, err = Div(half, 0)
	if !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("expected ErrDivisionByZero, got %v", err)
	}
}

func TestParseAndString(t *testing.T) {
	tests := []struct {
		input    string
		expected UFP64
		str      string
	}{
		{"0.4", 40_000_000, "0.40000000"},
		{"1", Unit, "1.00000000"},
		{"12.00000001", 12*Unit + 1, "12.00000001"},
		{".5", 50_000_000, "0.50000000"},
	}
	for _, test := range tests {
		result, err := Parse(test.input)
		if err != nil {
			t.Fatalf("Parse(%q): %+v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Parse(%q): expected %d, got %d", test.input, test.expected, result)
		}
		if result.String() != test.str {
			t.Errorf("String(): expected %s, got %s", test.str, result.String())
		}
	}

	invalid := []string{"", ".", "-1", "1.123456789", "abc", "1.+2"}
	for _, input := range invalid {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) unexpectedly succeeded", input)
		}
	}
}
