package can

import (
	"encoding/binary"
	"errors"

	"halbus-go/x/conv"
)

// MaxDataLen is the payload capacity of a classic CAN frame.
const MaxDataLen = 8

// frameWireLen is the size of the SocketCAN can_frame image.
const frameWireLen = 16

// can_frame flag bits carried in the identifier word.
const (
	effFlag = 0x80000000 // extended frame format
	rtrFlag = 0x40000000 // remote transmission request
)

// Errors returned by frame construction and decoding.
var (
	ErrNoID      = errors.New("can: frame has no identifier")
	ErrDataLen   = errors.New("can: frame data longer than 8 bytes")
	ErrTruncated = errors.New("can: truncated frame image")
)

// Frame is one classic CAN 2.0 data or remote frame.
type Frame struct {
	// ID is the arbitration identifier in either format. A frame with a
	// nil ID is not valid.
	ID ID
	// RTR marks a remote transmission request. The payload is absent on
	// the wire; Len still carries the requested length.
	RTR bool
	// Len is the data length code, 0..8.
	Len uint8
	// Data is the payload; bytes beyond Len are ignored.
	Data [MaxDataLen]byte
}

// NewFrame builds a data frame from id and up to 8 payload bytes.
func NewFrame(id ID, data []byte) (Frame, error) {
	if id == nil {
		return Frame{}, ErrNoID
	}
	if len(data) > MaxDataLen {
		return Frame{}, ErrDataLen
	}
	f := Frame{ID: id, Len: uint8(len(data))}
	copy(f.Data[:], data)
	return f, nil
}

// MustFrame is NewFrame for known-good literals; it panics on error.
func MustFrame(id ID, data []byte) Frame {
	f, err := NewFrame(id, data)
	if err != nil {
		panic(err)
	}
	return f
}

// Validate reports whether the frame is well formed.
func (f Frame) Validate() error {
	if f.ID == nil {
		return ErrNoID
	}
	if f.Len > MaxDataLen {
		return ErrDataLen
	}
	return nil
}

// MarshalBinary encodes the frame as a 16-byte SocketCAN can_frame: a 32-bit
// little-endian identifier word carrying the EFF and RTR flags, the length,
// three pad bytes and 8 data bytes.
func (f Frame) MarshalBinary() ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	word := f.ID.Bits()
	if f.ID.IsExtended() {
		word |= effFlag
	}
	if f.RTR {
		word |= rtrFlag
	}
	buf := make([]byte, frameWireLen)
	binary.LittleEndian.PutUint32(buf[0:4], word)
	buf[4] = f.Len
	copy(buf[8:], f.Data[:])
	return buf, nil
}

// UnmarshalBinary decodes a 16-byte can_frame image. Identifier bits beyond
// the format width are masked off, as the kernel does.
func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data) < frameWireLen {
		return ErrTruncated
	}
	word := binary.LittleEndian.Uint32(data[0:4])
	if word&effFlag != 0 {
		f.ID = ExtendedID(word) & ExtendedIDMax
	} else {
		f.ID = StandardID(word) & StandardIDMax
	}
	f.RTR = word&rtrFlag != 0
	f.Len = data[4]
	if f.Len > MaxDataLen {
		f.Len = MaxDataLen
	}
	copy(f.Data[:], data[8:frameWireLen])
	return nil
}

// String renders "ID [len] DA TA" with the identifier in upper-case hex,
// three digits for standard and eight for extended frames. Remote frames
// show an R marker in place of data. Built without fmt so MCU images stay
// lean.
func (f Frame) String() string {
	if f.ID == nil {
		return "invalid frame"
	}
	digits := 3
	if f.ID.IsExtended() {
		digits = 8
	}
	buf := make([]byte, 0, 40)
	buf = conv.AppendHex(buf, f.ID.Bits(), digits)
	buf = append(buf, " ["...)
	buf = append(buf, '0'+f.Len)
	buf = append(buf, ']')
	if f.RTR {
		buf = append(buf, " R"...)
		return string(buf)
	}
	for i := uint8(0); i < f.Len && i < MaxDataLen; i++ {
		buf = append(buf, ' ')
		buf = conv.AppendHex(buf, uint32(f.Data[i]), 2)
	}
	return string(buf)
}
