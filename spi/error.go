package spi

// Kind classifies a transaction failure for uniform handling by callers.
// Select-line faults always map to KindChipSelectFault; bus faults carry
// whatever kind the transport declares through KindError, defaulting to
// KindOther.
type Kind uint8

const (
	KindNone Kind = iota
	KindOther
	KindOverrun
	KindModeFault
	KindFrameFormat
	KindChipSelectFault
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindOverrun:
		return "overrun"
	case KindModeFault:
		return "mode fault"
	case KindFrameFormat:
		return "frame format"
	case KindChipSelectFault:
		return "chip select fault"
	}
	return "other"
}

// KindError is implemented by bus and pin errors that know their own
// classification.
type KindError interface {
	error
	ErrorKind() Kind
}

// Error is the failure type device transactions return. Op names the step
// that failed (select, read, write, transfer, delay, deselect) and Err
// carries the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error

	// DeselectErr records a select-line release fault that followed an
	// earlier operation failure in the same transaction. The operation
	// failure is the one reported; this field keeps the release fault
	// observable instead of swallowed.
	DeselectErr error
}

func (e *Error) Error() string {
	msg := "spi: " + e.Op
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.DeselectErr != nil {
		msg += " (deselect also failed: " + e.DeselectErr.Error() + ")"
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the failure class from err: KindNone for nil, the carried
// kind for transaction errors and self-classifying errors, KindOther for
// everything else.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return declaredKind(err)
}

func declaredKind(err error) Kind {
	if ke, ok := err.(KindError); ok {
		return ke.ErrorKind()
	}
	return KindOther
}
