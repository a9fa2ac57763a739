// Package conv holds allocation-free byte formatting for hot paths.
package conv

import "halbus-go/x/mathx"

const hexd = "0123456789ABCDEF"

// AppendHex appends n as uppercase hex without 0x, zero-padded to the given
// digit count (clamped to 1..8). Digits beyond what n needs pad with zeros;
// digits fewer than n needs truncate from the top, so pick the count for the
// width.
func AppendHex(dst []byte, n uint32, digits int) []byte {
	digits = mathx.Clamp(digits, 1, 8)
	for j := digits - 1; j >= 0; j-- {
		dst = append(dst, hexd[n>>(uint(j)*4)&0xF])
	}
	return dst
}
