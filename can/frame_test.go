package can

import (
	"bytes"
	"testing"
)

func TestNewFrame(t *testing.T) {
	f, err := NewFrame(StandardID(0x123), []byte{0xDE, 0xAD})
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	if f.ID != ID(StandardID(0x123)) || f.Len != 2 || f.Data[0] != 0xDE || f.Data[1] != 0xAD {
		t.Fatalf("unexpected frame %+v", f)
	}

	if _, err := NewFrame(nil, nil); err != ErrNoID {
		t.Fatalf("nil identifier: want ErrNoID, got %v", err)
	}
	if _, err := NewFrame(StandardIDZero, make([]byte, 9)); err != ErrDataLen {
		t.Fatalf("9-byte payload: want ErrDataLen, got %v", err)
	}
}

func TestMustFramePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("MustFrame with 9-byte payload did not panic")
		}
	}()
	MustFrame(StandardIDZero, make([]byte, 9))
}

func TestValidate(t *testing.T) {
	if err := (Frame{}).Validate(); err != ErrNoID {
		t.Fatalf("zero frame: want ErrNoID, got %v", err)
	}
	if err := (Frame{ID: StandardIDZero, Len: 9}).Validate(); err != ErrDataLen {
		t.Fatalf("len 9: want ErrDataLen, got %v", err)
	}
	if err := (Frame{ID: ExtendedIDMax, Len: 8}).Validate(); err != nil {
		t.Fatalf("valid frame rejected: %v", err)
	}
}

func TestFrameBinary(t *testing.T) {
	cases := []struct {
		name  string
		frame Frame
		wire  []byte
	}{
		{
			name:  "standard data frame",
			frame: MustFrame(StandardID(0x123), []byte{0xDE, 0xAD}),
			wire: []byte{
				0x23, 0x01, 0x00, 0x00, 2, 0, 0, 0,
				0xDE, 0xAD, 0, 0, 0, 0, 0, 0,
			},
		},
		{
			name:  "extended remote frame",
			frame: Frame{ID: ExtendedID(0x18DB33F1), RTR: true, Len: 3},
			wire: []byte{
				0xF1, 0x33, 0xDB, 0xD8, 3, 0, 0, 0,
				0, 0, 0, 0, 0, 0, 0, 0,
			},
		},
		{
			name:  "highest priority standard",
			frame: MustFrame(StandardIDZero, nil),
			wire: []byte{
				0x00, 0x00, 0x00, 0x00, 0, 0, 0, 0,
				0, 0, 0, 0, 0, 0, 0, 0,
			},
		},
	}
	for _, tc := range cases {
		got, err := tc.frame.MarshalBinary()
		if err != nil {
			t.Fatalf("%s: MarshalBinary: %v", tc.name, err)
		}
		if !bytes.Equal(got, tc.wire) {
			t.Fatalf("%s: wire = % X, want % X", tc.name, got, tc.wire)
		}

		var back Frame
		if err := back.UnmarshalBinary(tc.wire); err != nil {
			t.Fatalf("%s: UnmarshalBinary: %v", tc.name, err)
		}
		if back != tc.frame {
			t.Fatalf("%s: round trip = %+v, want %+v", tc.name, back, tc.frame)
		}
	}
}

func TestUnmarshalBinaryShort(t *testing.T) {
	var f Frame
	if err := f.UnmarshalBinary(make([]byte, 15)); err != ErrTruncated {
		t.Fatalf("want ErrTruncated, got %v", err)
	}
}

func TestMarshalBinaryInvalid(t *testing.T) {
	if _, err := (Frame{}).MarshalBinary(); err != ErrNoID {
		t.Fatalf("want ErrNoID, got %v", err)
	}
}

func TestFrameString(t *testing.T) {
	cases := []struct {
		frame Frame
		want  string
	}{
		{MustFrame(StandardID(0x123), []byte{0xDE, 0xAD}), "123 [2] DE AD"},
		{MustFrame(ExtendedID(0x18DB33F1), nil), "18DB33F1 [0]"},
		{Frame{ID: StandardIDMax, RTR: true, Len: 4}, "7FF [4] R"},
		{MustFrame(StandardIDZero, []byte{0x00}), "000 [1] 00"},
		{Frame{}, "invalid frame"},
	}
	for _, tc := range cases {
		if got := tc.frame.String(); got != tc.want {
			t.Fatalf("String() = %q, want %q", got, tc.want)
		}
	}
}
