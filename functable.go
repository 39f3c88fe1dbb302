package ndi

import "unsafe"

// Slot indexes into the NDIlib_v5 struct returned by NDIlib_v5_load. Every
// slot is one function pointer wide; the layout is fixed by the SDK's
// Processing.NDI.DynamicLoad.h and only ever grows at the end.
const (
	slotInitialize            = 0
	slotVersion               = 2
	slotIsSupportedCPU        = 3
	slotFindCreateV2          = 5
	slotFindDestroy           = 6
	slotRoutingCreate         = 35
	slotRoutingDestroy        = 36
	slotRoutingChange         = 37
	slotRoutingClear          = 38
	slotFindWaitForSources    = 42
	slotFindGetCurrentSources = 43

	// tableSlots is how many slots are read from the table.
	tableSlots = slotFindGetCurrentSources + 1
)

// funcTable is the Go view of the NDIlib_v5 table. A nil field is an
// absent symbol and must be reported with missingSymbol, never called.
type funcTable struct {
	initialize     func() bool
	version        func() *byte
	isSupportedCPU func() bool

	findCreateV2          func(settings unsafe.Pointer) uintptr
	findDestroy           func(instance uintptr)
	findWaitForSources    func(instance uintptr, timeoutMs uint32) bool
	findGetCurrentSources func(instance uintptr, count *uint32) *sourceRecord

	routingCreate  func(settings unsafe.Pointer) uintptr
	routingDestroy func(instance uintptr)
	routingChange  func(instance uintptr, source unsafe.Pointer) bool
	routingClear   func(instance uintptr) bool
}

// initFuncTable runs the table's one-time library initialization.
func initFuncTable(t *funcTable) error {
	if t.initialize == nil {
		return missingSymbol("initialize")
	}
	if !t.initialize() {
		return ErrInitializeFailed
	}
	return nil
}

// readTableSlots copies the first n slots of the table at ptr.
func readTableSlots(ptr unsafe.Pointer, n int) []uintptr {
	slots := make([]uintptr, n)
	copy(slots, unsafe.Slice((*uintptr)(ptr), n))
	return slots
}

// sourceRecord mirrors NDIlib_source_t. The second field is a union of
// p_url_address and the deprecated p_ip_address.
type sourceRecord struct {
	name       *byte
	urlAddress *byte
}

// findCreateRecord mirrors NDIlib_find_create_t.
type findCreateRecord struct {
	showLocalSources bool
	groups           *byte
	extraIPs         *byte
}

// routingCreateRecord mirrors NDIlib_routing_create_t.
type routingCreateRecord struct {
	name   *byte
	groups *byte
}
