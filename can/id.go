// Package can models classic CAN identifiers and frames for the transports
// and controller drivers in this repo.
//
// Identifiers come in two widths: 11-bit standard (base frame format) and
// 29-bit extended (extended frame format). ID is the closed sum of the two.
// Compare orders identifiers the way bus arbitration does: bit by bit from
// the most significant, dominant (0) beating recessive (1), with the IDE bit
// deciding between a standard identifier and an extended identifier that
// share the same leading 11 bits. The standard one wins that tie because its
// IDE bit transmits dominant.
package can

import "errors"

// ErrIDRange is returned by the checked constructors when the raw value does
// not fit the identifier format.
var ErrIDRange = errors.New("can: identifier out of range")

// ---------------- StandardID ----------------

// StandardID is an 11-bit identifier (base frame format), valid 0..0x7FF.
//
// It is a plain integer type: a direct conversion StandardID(x) performs no
// range check and is the deliberate escape hatch for values already known to
// be in range. Out-of-range values corrupt arbitration ordering and frame
// encoding. Use NewStandardID everywhere else.
type StandardID uint16

const (
	// StandardIDZero is the highest-priority standard identifier.
	StandardIDZero StandardID = 0
	// StandardIDMax is the lowest-priority standard identifier.
	StandardIDMax StandardID = 0x7FF
)

// NewStandardID returns raw as a standard identifier, or ErrIDRange if it
// needs more than 11 bits.
func NewStandardID(raw uint16) (StandardID, error) {
	if raw > uint16(StandardIDMax) {
		return 0, ErrIDRange
	}
	return StandardID(raw), nil
}

// StandardIDUnchecked returns raw as a standard identifier without the range
// check; the caller must guarantee raw <= 0x7FF. It compiles to nothing (it
// is a plain conversion) and exists to make the unchecked cases searchable.
func StandardIDUnchecked(raw uint16) StandardID { return StandardID(raw) }

// Raw returns the identifier bits.
func (id StandardID) Raw() uint16 { return uint16(id) }

func (id StandardID) Bits() uint32  { return uint32(id) }
func (StandardID) IsExtended() bool { return false }
func (StandardID) isID()            {}

// ---------------- ExtendedID ----------------

// ExtendedID is a 29-bit identifier (extended frame format), valid
// 0..0x1FFFFFFF. The same conversion caveat as StandardID applies.
type ExtendedID uint32

const (
	// ExtendedIDZero is the highest-priority extended identifier.
	ExtendedIDZero ExtendedID = 0
	// ExtendedIDMax is the lowest-priority extended identifier.
	ExtendedIDMax ExtendedID = 0x1FFFFFFF
)

// NewExtendedID returns raw as an extended identifier, or ErrIDRange if it
// needs more than 29 bits.
func NewExtendedID(raw uint32) (ExtendedID, error) {
	if raw > uint32(ExtendedIDMax) {
		return 0, ErrIDRange
	}
	return ExtendedID(raw), nil
}

// ExtendedIDUnchecked returns raw as an extended identifier without the
// range check; the caller must guarantee raw <= 0x1FFFFFFF.
func ExtendedIDUnchecked(raw uint32) ExtendedID { return ExtendedID(raw) }

// Raw returns the identifier bits.
func (id ExtendedID) Raw() uint32 { return uint32(id) }

// StandardID returns the leading 11 bits (28..18), the part that arbitrates
// against standard identifiers on the wire. The result is in range by
// construction.
func (id ExtendedID) StandardID() StandardID {
	return StandardID(uint32(id) >> 18)
}

func (id ExtendedID) Bits() uint32  { return uint32(id) }
func (ExtendedID) IsExtended() bool { return true }
func (ExtendedID) isID()            {}

// ---------------- ID sum ----------------

// ID is either a StandardID or an ExtendedID; no other implementations
// exist. Interface equality compares format and bits together, so a standard
// and an extended identifier are never equal however their values relate.
// IDs are valid map keys.
type ID interface {
	// Bits returns the raw identifier zero-extended to 32 bits.
	Bits() uint32
	// IsExtended reports the format: false for 11-bit, true for 29-bit.
	IsExtended() bool

	isID()
}

var (
	_ ID = StandardIDZero
	_ ID = ExtendedIDZero
)

// arbitrationKey packs the fields a receiver sees during arbitration into
// one integer, most significant first: the leading 11 bits, the IDE bit
// (dominant 0 for standard frames), then the extended low 18 bits.
func arbitrationKey(id ID) uint32 {
	bits := id.Bits()
	if !id.IsExtended() {
		return bits << 19
	}
	return bits>>18<<19 | 1<<18 | bits&0x3FFFF
}

// Compare orders a and b by arbitration priority: -1 when a wins the bus,
// +1 when b wins, 0 only when a == b. It is a strict total order across both
// formats and says nothing about equality beyond that. Both identifiers must
// be non-nil.
func Compare(a, b ID) int {
	ka, kb := arbitrationKey(a), arbitrationKey(b)
	switch {
	case ka < kb:
		return -1
	case ka > kb:
		return 1
	}
	return 0
}
