package clock

// EventKind identifies one of the two RTC event lines the driver consumes.
type EventKind uint8

const (
	// EventOverflow fires when the counter wraps from CounterMask to 0.
	EventOverflow EventKind = iota
	// EventCompare fires when the counter reaches the armed compare value.
	EventCompare
)

// CompareSlot selects one of the peripheral's compare registers.
type CompareSlot uint8

// CompareHalf is the compare slot the driver arms at HalfPeriod. Slots 0 and 1
// are left free for other users of the peripheral.
const CompareHalf CompareSlot = 2

// RTCPeripheral is the abstract RTC interface the driver uses.
// Platform-specific implementations handle actual hardware access;
// the driver takes exclusive ownership of the peripheral once started.
type RTCPeripheral interface {
	// Counter reads the free-running counter. Only the low CounterWidth
	// bits are meaningful.
	Counter() uint32

	// SetCompare arms a compare-match event at the given counter value.
	// Returns an error if the slot or value is out of range.
	SetCompare(slot CompareSlot, value uint32) error

	// ClearCounter resets the counter to zero. The clear may take effect
	// asynchronously; callers must confirm via Counter read-back.
	ClearCounter()

	// EnableCounter starts the counter running.
	EnableCounter()

	// EnableInterrupt unmasks the interrupt line for an event kind.
	EnableInterrupt(kind EventKind)

	// EventTriggered reports whether an event is pending.
	EventTriggered(kind EventKind) bool

	// ResetEvent acknowledges a pending event.
	ResetEvent(kind EventKind)
}

// InterruptController routes the peripheral's overflow and compare-match
// lines to the given entry point. The handler is invoked at interrupt
// priority and must not block or allocate.
type InterruptController interface {
	Route(handler func())
}
