//go:build darwin || linux || freebsd

package ndi

import "github.com/ebitengine/purego"

// openLibrary loads a dynamic library on Unix-like systems.
func openLibrary(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

// librarySymbol retrieves a symbol from the loaded library.
func librarySymbol(lib uintptr, name string) (uintptr, error) {
	return purego.Dlsym(lib, name)
}
