package can

import (
	"sort"
	"testing"
)

func TestNewStandardID(t *testing.T) {
	cases := []struct {
		raw uint16
		ok  bool
	}{
		{0x000, true},
		{0x001, true},
		{0x123, true},
		{0x7FF, true},
		{0x800, false},
		{0xFFFF, false},
	}
	for _, tc := range cases {
		id, err := NewStandardID(tc.raw)
		if !tc.ok {
			if err != ErrIDRange {
				t.Fatalf("NewStandardID(%#x): want ErrIDRange, got %v", tc.raw, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("NewStandardID(%#x): unexpected error %v", tc.raw, err)
		}
		if id.Raw() != tc.raw {
			t.Fatalf("NewStandardID(%#x).Raw() = %#x", tc.raw, id.Raw())
		}
	}
}

func TestNewExtendedID(t *testing.T) {
	cases := []struct {
		raw uint32
		ok  bool
	}{
		{0x00000000, true},
		{0x00000001, true},
		{0x12345678, true},
		{0x1FFFFFFF, true},
		{0x20000000, false},
		{0xFFFFFFFF, false},
	}
	for _, tc := range cases {
		id, err := NewExtendedID(tc.raw)
		if !tc.ok {
			if err != ErrIDRange {
				t.Fatalf("NewExtendedID(%#x): want ErrIDRange, got %v", tc.raw, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("NewExtendedID(%#x): unexpected error %v", tc.raw, err)
		}
		if id.Raw() != tc.raw {
			t.Fatalf("NewExtendedID(%#x).Raw() = %#x", tc.raw, id.Raw())
		}
	}
}

func TestIDConstants(t *testing.T) {
	if StandardIDZero.Raw() != 0 || StandardIDMax.Raw() != 0x7FF {
		t.Fatalf("standard constants: zero=%#x max=%#x", StandardIDZero.Raw(), StandardIDMax.Raw())
	}
	if ExtendedIDZero.Raw() != 0 || ExtendedIDMax.Raw() != 0x1FFFFFFF {
		t.Fatalf("extended constants: zero=%#x max=%#x", ExtendedIDZero.Raw(), ExtendedIDMax.Raw())
	}
	// Both bounds are themselves valid identifiers.
	if _, err := NewStandardID(StandardIDMax.Raw()); err != nil {
		t.Fatalf("StandardIDMax rejected: %v", err)
	}
	if _, err := NewExtendedID(ExtendedIDMax.Raw()); err != nil {
		t.Fatalf("ExtendedIDMax rejected: %v", err)
	}
}

func TestUncheckedConstructors(t *testing.T) {
	if got := StandardIDUnchecked(0x123); got.Raw() != 0x123 {
		t.Fatalf("StandardIDUnchecked(0x123).Raw() = %#x", got.Raw())
	}
	if got := ExtendedIDUnchecked(0x18DB33F1); got.Raw() != 0x18DB33F1 {
		t.Fatalf("ExtendedIDUnchecked(0x18DB33F1).Raw() = %#x", got.Raw())
	}
}

func TestExtendedStandardPart(t *testing.T) {
	cases := []struct {
		ext  ExtendedID
		want StandardID
	}{
		{ExtendedIDZero, 0},
		{ExtendedID(1), 0},
		{ExtendedID(0x3FFFF), 0}, // all 18 low bits set, leading part still zero
		{ExtendedID(1 << 18), 1},
		{ExtendedID(0x12345678), 0x48D},
		{ExtendedIDMax, StandardIDMax},
	}
	for _, tc := range cases {
		if got := tc.ext.StandardID(); got != tc.want {
			t.Fatalf("ExtendedID(%#x).StandardID() = %#x, want %#x", tc.ext.Raw(), got.Raw(), tc.want.Raw())
		}
	}
}

func TestCompareDominance(t *testing.T) {
	cases := []struct {
		name          string
		winner, loser ID
	}{
		{"standard zero beats one", StandardIDZero, StandardID(1)},
		{"standard zero beats standard max", StandardIDZero, StandardIDMax},
		{"standard 7FE beats 7FF", StandardID(0x7FE), StandardIDMax},
		{"extended zero beats one", ExtendedIDZero, ExtendedID(1)},
		{"standard 1 beats extended max", StandardID(1), ExtendedIDMax},
		{"extended 7FF beats standard 1", ExtendedID((1 << 11) - 1), StandardID(1)},
		{"zero-led extended beats standard 1", ExtendedID(0x3FFFF), StandardID(1)},
		{"IDE tie: standard 7FF beats extended 7FF<<18", StandardIDMax, ExtendedID(0x7FF << 18)},
		{"IDE tie: standard zero beats extended zero", StandardIDZero, ExtendedIDZero},
		{"lower leading bits win across formats", ExtendedID(0x400<<18 | 0x3FFFF), StandardID(0x401)},
		{"extended 5 beats standard 5", ExtendedID(5), StandardID(5)},
	}
	for _, tc := range cases {
		if got := Compare(tc.winner, tc.loser); got != -1 {
			t.Errorf("%s: Compare(winner, loser) = %d, want -1", tc.name, got)
		}
		if got := Compare(tc.loser, tc.winner); got != 1 {
			t.Errorf("%s: Compare(loser, winner) = %d, want 1", tc.name, got)
		}
	}
}

func orderSamples() []ID {
	return []ID{
		StandardIDZero,
		StandardID(1),
		StandardID(5),
		StandardID(0x400),
		StandardID(0x401),
		StandardIDMax,
		ExtendedIDZero,
		ExtendedID(1),
		ExtendedID(5),
		ExtendedID((1 << 11) - 1),
		ExtendedID(0x3FFFF),
		ExtendedID(1 << 18),
		ExtendedID(0x400<<18 | 0x3FFFF),
		ExtendedID(0x7FF << 18),
		ExtendedID(0x12345678),
		ExtendedIDMax,
	}
}

func TestCompareTotalOrder(t *testing.T) {
	ids := orderSamples()
	for _, a := range ids {
		for _, b := range ids {
			ab, ba := Compare(a, b), Compare(b, a)
			if ab != -ba {
				t.Fatalf("Compare not antisymmetric for %v/%v: %d vs %d", a, b, ab, ba)
			}
			if (ab == 0) != (a == b) {
				t.Fatalf("Compare(%v, %v) = %d but equality is %v", a, b, ab, a == b)
			}
			for _, c := range ids {
				if ab <= 0 && Compare(b, c) <= 0 && Compare(a, c) > 0 {
					t.Fatalf("Compare not transitive over %v <= %v <= %v", a, b, c)
				}
			}
		}
	}
}

func TestSortByArbitration(t *testing.T) {
	ids := []ID{
		StandardID(0x100),
		ExtendedIDMax,
		StandardIDZero,
		ExtendedID(0x100),
		StandardIDMax,
		ExtendedID(0x7FF << 18),
	}
	sort.Slice(ids, func(i, j int) bool { return Compare(ids[i], ids[j]) < 0 })

	want := []ID{
		StandardIDZero,
		ExtendedID(0x100),
		StandardID(0x100),
		StandardIDMax,
		ExtendedID(0x7FF << 18),
		ExtendedIDMax,
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("sorted[%d] = %v, want %v", i, ids[i], want[i])
		}
	}
}

func TestIDEquality(t *testing.T) {
	// Format is part of identity: related values in different formats stay
	// distinct, both under == and as map keys.
	if ID(StandardID(5)) == ID(ExtendedID(5)) {
		t.Fatal("standard and extended identifiers compared equal")
	}
	m := map[ID]string{
		StandardID(5): "standard",
		ExtendedID(5): "extended",
	}
	if len(m) != 2 {
		t.Fatalf("map collapsed distinct identifiers: %v", m)
	}
	if m[StandardID(5)] != "standard" || m[ExtendedID(5)] != "extended" {
		t.Fatalf("map lookups returned %q/%q", m[StandardID(5)], m[ExtendedID(5)])
	}
}
