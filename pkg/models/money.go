package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Money is a currency amount in cents.
type Money int64

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
)

// max integer digits accepted, keeps cents well inside int64
const maxAmountDigits = 13

// ParseMoney parses a decimal amount such as "100", "99.5" or "12.25".
// At most two fractional digits are accepted and the result must be positive.
func ParseMoney(s string) (Money, error) {
	m, err := parseAmount(s)
	if err != nil {
		return 0, err
	}
	if m <= 0 {
		return 0, ErrNonPositiveAmount
	}
	return m, nil
}

// MustMoney is ParseMoney for literals known to be valid.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(fmt.Sprintf("models: MustMoney(%q): %v", s, err))
	}
	return m
}

func parseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if s[0] == '-' {
		if _, err := parseAmount(s[1:]); err == nil {
			return 0, ErrNonPositiveAmount
		}
		return 0, ErrInvalidAmount
	}

	whole, frac, hasDot := strings.Cut(s, ".")
	if whole == "" && !hasDot {
		return 0, ErrInvalidAmount
	}
	if whole == "" {
		whole = "0"
	}
	if hasDot && (frac == "" || len(frac) > 2) {
		return 0, ErrInvalidAmount
	}
	if len(whole) > maxAmountDigits || !digitsOnly(whole) || !digitsOnly(frac) {
		return 0, ErrInvalidAmount
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	var cents int64
	if frac != "" {
		if len(frac) == 1 {
			frac += "0"
		}
		cents, _ = strconv.ParseInt(frac, 10, 64)
	}

	return Money(units*100 + cents), nil
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Cents returns the amount in the smallest currency unit.
func (m Money) Cents() int64 { return int64(m) }

func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		return nil
	}
	v, err := parseAmount(strings.TrimPrefix(s, "-"))
	if err != nil {
		return fmt.Errorf("money: %w", err)
	}
	if strings.HasPrefix(s, "-") {
		v = -v
	}
	*m = v
	return nil
}
