package can_test

import (
	"fmt"
	"sort"

	"halbus-go/can"
)

// Identifiers sort by arbitration priority, not by raw value: an extended
// identifier with a small leading part beats a numerically smaller standard
// one, and a standard identifier beats the extended identifier sharing its
// leading bits.
func ExampleCompare() {
	ids := []can.ID{
		can.ExtendedID(0x100),
		can.StandardID(0x100),
		can.StandardID(0x003),
		can.ExtendedID(0x003 << 18),
	}
	sort.Slice(ids, func(i, j int) bool { return can.Compare(ids[i], ids[j]) < 0 })
	for _, id := range ids {
		fmt.Printf("%07X extended=%v\n", id.Bits(), id.IsExtended())
	}
	// Output:
	// 0000100 extended=true
	// 0000003 extended=false
	// 00C0000 extended=true
	// 0000100 extended=false
}

func ExampleExtendedID_StandardID() {
	ext := can.ExtendedID(0x18DB33F1)
	fmt.Printf("%03X\n", ext.StandardID().Raw())
	// Output:
	// 636
}
