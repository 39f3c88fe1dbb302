//go:build !darwin && !linux && !freebsd && !windows

package ndi

import "unsafe"

func openLibrary(path string) (uintptr, error) {
	return 0, ErrUnsupportedPlatform
}

func loadV5(lib uintptr) (unsafe.Pointer, error) {
	return nil, ErrUnsupportedPlatform
}

func bindFuncTable(slots []uintptr) *funcTable {
	return &funcTable{}
}
