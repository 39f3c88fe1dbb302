//go:build darwin || linux || freebsd || windows

package ndi

import (
	"unsafe"

	"github.com/ebitengine/purego"
)

const v5LoadSymbol = "NDIlib_v5_load"

// loadV5 resolves NDIlib_v5_load in the opened library and calls it. The
// returned table pointer may be nil; the caller checks.
func loadV5(lib uintptr) (unsafe.Pointer, error) {
	sym, err := librarySymbol(lib, v5LoadSymbol)
	if err != nil {
		return nil, &LoadError{Path: v5LoadSymbol, Err: err}
	}
	var load func() unsafe.Pointer
	purego.RegisterFunc(&load, sym)
	return load(), nil
}

// bindFuncTable wraps every non-NULL slot in a Go func. NULL slots stay nil.
func bindFuncTable(slots []uintptr) *funcTable {
	t := &funcTable{}
	bindSlot(&t.initialize, slots, slotInitialize)
	bindSlot(&t.version, slots, slotVersion)
	bindSlot(&t.isSupportedCPU, slots, slotIsSupportedCPU)

	bindSlot(&t.findCreateV2, slots, slotFindCreateV2)
	bindSlot(&t.findDestroy, slots, slotFindDestroy)
	bindSlot(&t.findWaitForSources, slots, slotFindWaitForSources)
	bindSlot(&t.findGetCurrentSources, slots, slotFindGetCurrentSources)

	bindSlot(&t.routingCreate, slots, slotRoutingCreate)
	bindSlot(&t.routingDestroy, slots, slotRoutingDestroy)
	bindSlot(&t.routingChange, slots, slotRoutingChange)
	bindSlot(&t.routingClear, slots, slotRoutingClear)
	return t
}

func bindSlot[F any](fn *F, slots []uintptr, idx int) {
	if idx < len(slots) && slots[idx] != 0 {
		purego.RegisterFunc(fn, slots[idx])
	}
}
