// Package fixedpoint implements the saturating arithmetic and Q-format
// conversions every DSP instruction ultimately reduces to. All operations
// here are pure: they define the reference semantics against which the
// hardware simulator's output is compared.
package fixedpoint

import "math"

const (
	satMin = -32768
	satMax = 32767

	// InterpBits is the number of top bits of a 16-bit fraction used by
	// Linterp as the interpolation weight.
	InterpBits = 8
)

// ToQ scales x by 2^(15-shift), rounds to nearest even, and saturates to
// the int16 range. shift must be in [0,15].
func ToQ(x float64, shift int) int16 {
	n := 15 - shift
	scale := math.Ldexp(1, n)

	maxVal := float64(satMax) / scale
	minVal := float64(satMin) / scale

	if x > maxVal {
		x = maxVal
	}
	if x < minVal {
		x = minVal
	}

	return int16(math.RoundToEven(x * scale))
}

// ToQ15 is ToQ with shift=0: the default audio-sample Q1.15 conversion.
// The exact upper bound 0.999969482421875 maps to 32767.
func ToQ15(x float64) int16 {
	return ToQ(x, 0)
}

// Sum16Sat adds two int16 values. When sat is true the 17-bit result
// saturates to the int16 range; otherwise it truncates (wraps modulo
// 2^16) the way the hardware's non-saturating adder does.
func Sum16Sat(a, b int16, sat bool) int16 {
	z := int32(a) + int32(b)

	if sat {
		if z > satMax {
			z = satMax
		}
		if z < satMin {
			z = satMin
		}
	}

	return int16(z)
}

// Mul16 computes z = a*b as a 32-bit product, optionally right-shifts it
// by (15-shift) unless noShift is set, optionally saturates the result to
// the int16 range, and returns the low 16 bits.
func Mul16(a, b int16, noShift bool, shift int, sat bool) int16 {
	z := int32(a) * int32(b)

	if !noShift {
		actualShift := 15 - shift
		if actualShift > 0 {
			z >>= uint(actualShift)
		}
	}

	if sat {
		if z > satMax {
			z = satMax
		}
		if z < satMin {
			z = satMin
		}
	}

	return int16(z)
}

// Linterp linearly interpolates between x and y using the top InterpBits
// bits of frac16 as the weight (0..255 maps to 0.0..~1.0).
func Linterp(x, y int16, frac16 uint16) int16 {
	frac := int32(frac16 >> (16 - InterpBits))

	diff := int32(y) - int32(x)
	// Round-to-nearest: (diff*frac + half) >> 8. The shift is arithmetic,
	// so an exact half rounds toward +infinity for either sign.
	num := diff*frac + (1 << (InterpBits - 1))
	return int16(int32(x) + num>>InterpBits)
}

// Pow2Ceil returns the smallest power of two >= x, or 0 on overflow. Used
// by the effect compiler to round delay-buffer sizes so that the delay
// buffer's modulo can be implemented as a bitmask.
func Pow2Ceil(x int) int {
	y := 1
	for y != 0 && y < x {
		y <<= 1
	}
	return y
}
