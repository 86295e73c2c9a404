// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package loadimage

import (
	"encoding"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Rat is a rational number.
type Rat[T int32 | uint32] interface {
	Num() T
	Den() T
	Float64() float64

	// String returns the string representation of the rational number.
	// If the denominator is 1, the string will be the numerator only.
	String() string
}

var (
	_ encoding.TextUnmarshaler = (*rat[int32])(nil)
	_ encoding.TextMarshaler   = rat[int32]{}
)

// rat is a lightweight version of math/big.Rat.
type rat[T int32 | uint32] struct {
	num T
	den T
}

func (r rat[T]) Num() T {
	return r.num
}

func (r rat[T]) Den() T {
	return r.den
}

// Float64 returns the float64 representation of the rational number.
// A zero denominator yields +Inf, -Inf or NaN.
func (r rat[T]) Float64() float64 {
	return float64(r.num) / float64(r.den)
}

func (r rat[T]) String() string {
	if r.den == 1 {
		return strconv.FormatInt(int64(r.num), 10)
	}
	return fmt.Sprintf("%d/%d", r.num, r.den)
}

func (r *rat[T]) UnmarshalText(text []byte) error {
	s := string(text)
	if !strings.Contains(s, "/") {
		num, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse %q as a rational number: %w", s, err)
		}
		r.num = T(num)
		r.den = 1
		return nil
	}
	if _, err := fmt.Sscanf(s, "%d/%d", &r.num, &r.den); err != nil {
		return fmt.Errorf("failed to parse %q as a rational number: %w", s, err)
	}
	return nil
}

func (r rat[T]) MarshalText() (text []byte, err error) {
	return []byte(r.String()), nil
}

var errZeroDenominator = errors.New("denominator must be non-zero")

// NewRat returns a new Rat with the given numerator and denominator.
// The result is normalized: the greatest common divisor is removed and the
// denominator is positive.
func NewRat[T int32 | uint32](num, den T) (Rat[T], error) {
	if den == 0 {
		return nil, errZeroDenominator
	}

	gcd := func(a, b T) T {
		for b != 0 {
			a, b = b, a%b
		}
		if a < 0 {
			a = -a
		}
		return a
	}
	if d := gcd(num, den); d > 1 {
		num, den = num/d, den/d
	}

	if den < 0 {
		num, den = -num, -den
	}

	return &rat[T]{num: num, den: den}, nil
}

// newRatRaw keeps the stored numerator and denominator as is.
// EXIF allows a zero denominator, which we keep so the value can be
// presented the way it was written.
func newRatRaw[T int32 | uint32](num, den T) Rat[T] {
	return &rat[T]{num: num, den: den}
}

type float64Provider interface {
	Float64() float64
}

func toFloat64(v any) float64 {
	switch vv := v.(type) {
	case float64Provider:
		return vv.Float64()
	case float64:
		return vv
	case float32:
		return float64(vv)
	case uint8:
		return float64(vv)
	case uint16:
		return float64(vv)
	case uint32:
		return float64(vv)
	case int8:
		return float64(vv)
	case int16:
		return float64(vv)
	case int32:
		return float64(vv)
	case int:
		return float64(vv)
	default:
		return math.NaN()
	}
}

// toUint32 converts the numeric scalar types used by the decoders.
func toUint32(v any) (uint32, bool) {
	switch vv := v.(type) {
	case uint8:
		return uint32(vv), true
	case uint16:
		return uint32(vv), true
	case uint32:
		return vv, true
	case int8:
		return uint32(vv), vv >= 0
	case int16:
		return uint32(vv), vv >= 0
	case int32:
		return uint32(vv), vv >= 0
	default:
		return 0, false
	}
}

func toString(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return vv
	case []byte:
		return string(trimBytesNulls(vv))
	case []string:
		return strings.Join(vv, ", ")
	case []any:
		ss := make([]string, len(vv))
		for i, v := range vv {
			ss[i] = toString(v)
		}
		return strings.Join(ss, ", ")
	case fmt.Stringer:
		return vv.String()
	default:
		return fmt.Sprintf("%v", vv)
	}
}

func printableString(s string) string {
	ss := strings.Map(func(r rune) rune {
		if unicode.IsGraphic(r) {
			return r
		}
		return -1
	}, s)

	return strings.TrimSpace(ss)
}

func trimBytesNulls(b []byte) []byte {
	var lo, hi int
	for lo = 0; lo < len(b) && b[lo] == 0; lo++ {
	}
	for hi = len(b) - 1; hi >= 0 && b[hi] == 0; hi-- {
	}
	if lo > hi {
		return nil
	}
	return b[lo : hi+1]
}

// cstring returns b up to, not including, the first NUL byte.
func cstring(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
