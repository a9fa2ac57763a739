package can

// Filter selects frames, typically for a Mux subscription. A nil Filter is
// treated as accept-everything by the consumers in this package.
type Filter func(Frame) bool

// ByID accepts frames whose identifier equals id exactly: format and bits
// both. A standard and an extended identifier never match each other.
func ByID(id ID) Filter {
	return func(f Frame) bool { return f.ID == id }
}

// ByMask accepts frames whose identifier bits equal want on the bits set in
// mask, the acceptance-filter convention of CAN controllers. Both formats
// pass; combine with StandardOnly or ExtendedOnly when the format matters.
func ByMask(mask, want uint32) Filter {
	want &= mask
	return func(f Frame) bool {
		return f.ID != nil && f.ID.Bits()&mask == want
	}
}

// StandardOnly accepts base format frames.
func StandardOnly() Filter {
	return func(f Frame) bool { return f.ID != nil && !f.ID.IsExtended() }
}

// ExtendedOnly accepts extended format frames.
func ExtendedOnly() Filter {
	return func(f Frame) bool { return f.ID != nil && f.ID.IsExtended() }
}

// DataOnly rejects remote transmission requests.
func DataOnly() Filter {
	return func(f Frame) bool { return !f.RTR }
}

// RTROnly accepts only remote transmission requests.
func RTROnly() Filter {
	return func(f Frame) bool { return f.RTR }
}

// HigherPriorityThan accepts frames that would beat limit in arbitration.
func HigherPriorityThan(limit ID) Filter {
	return func(f Frame) bool { return f.ID != nil && Compare(f.ID, limit) < 0 }
}

// And accepts frames that pass every filter.
func And(filters ...Filter) Filter {
	return func(f Frame) bool {
		for _, flt := range filters {
			if !flt(f) {
				return false
			}
		}
		return true
	}
}

// Or accepts frames that pass at least one filter.
func Or(filters ...Filter) Filter {
	return func(f Frame) bool {
		for _, flt := range filters {
			if flt(f) {
				return true
			}
		}
		return false
	}
}

// Not inverts a filter.
func Not(flt Filter) Filter {
	return func(f Frame) bool { return !flt(f) }
}
