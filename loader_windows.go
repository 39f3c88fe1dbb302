//go:build windows

package ndi

import "golang.org/x/sys/windows"

// openLibrary loads a DLL. Relative names go through the standard DLL
// search order.
func openLibrary(path string) (uintptr, error) {
	h, err := windows.LoadLibrary(path)
	return uintptr(h), err
}

// librarySymbol retrieves an exported procedure from the loaded DLL.
func librarySymbol(lib uintptr, name string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(lib), name)
}
