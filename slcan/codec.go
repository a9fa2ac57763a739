// Package slcan speaks the Lawicel SLCAN ASCII protocol, the de-facto framing
// for CAN adapters on a serial line. A frame is one CR-terminated line: a
// format letter (t/T for data, r/R for remote, lower case standard, upper
// case extended), the identifier in fixed-width upper-case hex, a length
// digit and the payload in hex pairs.
package slcan

import (
	"errors"

	"halbus-go/can"
	"halbus-go/x/conv"
)

// Errors returned by the codec. Out-of-range identifiers surface as
// can.ErrIDRange straight from the checked constructors.
var ErrSyntax = errors.New("slcan: malformed frame line")

// cr terminates every SLCAN line; bell is the adapter's error reply.
const (
	cr   = '\r'
	bell = 0x07
)

// maxLineLen is the longest frame line: 'T', 8 identifier digits, a length
// digit, 16 payload digits and the terminator.
const maxLineLen = 27

// AppendFrame appends f's wire line, terminator included, and returns the
// extended buffer.
func AppendFrame(dst []byte, f can.Frame) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return dst, err
	}
	var code byte
	digits := 3
	switch {
	case f.RTR && f.ID.IsExtended():
		code, digits = 'R', 8
	case f.RTR:
		code = 'r'
	case f.ID.IsExtended():
		code, digits = 'T', 8
	default:
		code = 't'
	}
	dst = append(dst, code)
	dst = conv.AppendHex(dst, f.ID.Bits(), digits)
	dst = append(dst, '0'+f.Len)
	if !f.RTR {
		for _, b := range f.Data[:f.Len] {
			dst = conv.AppendHex(dst, uint32(b), 2)
		}
	}
	return append(dst, cr), nil
}

// ParseFrame decodes one frame line, with or without its terminator. Both
// hex cases are accepted on input. Identifier range violations come back as
// can.ErrIDRange, everything else malformed as ErrSyntax.
func ParseFrame(line []byte) (can.Frame, error) {
	if n := len(line); n > 0 && line[n-1] == cr {
		line = line[:n-1]
	}
	if len(line) < 2 {
		return can.Frame{}, ErrSyntax
	}

	var (
		rtr    bool
		digits int
	)
	switch line[0] {
	case 't':
		digits = 3
	case 'T':
		digits = 8
	case 'r':
		rtr, digits = true, 3
	case 'R':
		rtr, digits = true, 8
	default:
		return can.Frame{}, ErrSyntax
	}
	rest := line[1:]
	if len(rest) < digits+1 {
		return can.Frame{}, ErrSyntax
	}

	raw, ok := parseHex(rest[:digits])
	if !ok {
		return can.Frame{}, ErrSyntax
	}
	var id can.ID
	if digits == 8 {
		ext, err := can.NewExtendedID(raw)
		if err != nil {
			return can.Frame{}, err
		}
		id = ext
	} else {
		std, err := can.NewStandardID(uint16(raw))
		if err != nil {
			return can.Frame{}, err
		}
		id = std
	}

	lenDigit := rest[digits]
	if lenDigit < '0' || lenDigit > '0'+can.MaxDataLen {
		return can.Frame{}, ErrSyntax
	}
	f := can.Frame{ID: id, RTR: rtr, Len: lenDigit - '0'}

	payload := rest[digits+1:]
	if rtr {
		if len(payload) != 0 {
			return can.Frame{}, ErrSyntax
		}
		return f, nil
	}
	if len(payload) != 2*int(f.Len) {
		return can.Frame{}, ErrSyntax
	}
	for i := uint8(0); i < f.Len; i++ {
		b, ok := parseHex(payload[2*i : 2*i+2])
		if !ok {
			return can.Frame{}, ErrSyntax
		}
		f.Data[i] = byte(b)
	}
	return f, nil
}

func parseHex(s []byte) (uint32, bool) {
	var v uint32
	for _, c := range s {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= uint32(c - '0')
		case c >= 'A' && c <= 'F':
			v |= uint32(c-'A') + 10
		case c >= 'a' && c <= 'f':
			v |= uint32(c-'a') + 10
		default:
			return 0, false
		}
	}
	return v, true
}
