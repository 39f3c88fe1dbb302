package ndi

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below match the corresponding sentinel
// through errors.Is so callers can branch on the kind without errors.As.
var (
	// ErrLoading matches every *LoadError.
	ErrLoading = errors.New("ndi: failed to load NDI library")

	// ErrLoadV5Failed is returned when NDIlib_v5_load returns a NULL table.
	ErrLoadV5Failed = errors.New("ndi: NDIlib_v5_load() returned NULL, no NDIlib_v5 table")

	// ErrInitializeFailed is returned when the table's initialize() reports
	// failure, usually because the CPU is not supported.
	ErrInitializeFailed = errors.New("ndi: NDIlib_v5->initialize() failed, is the CPU supported?")

	// ErrMissingSymbol matches every *MissingSymbolError.
	ErrMissingSymbol = errors.New("ndi: NDIlib_v5 table is missing symbol")

	// ErrUnexpectedNullPointer matches every *NullPointerError.
	ErrUnexpectedNullPointer = errors.New("ndi: NDIlib_v5 function returned NULL unexpectedly")

	// ErrInvalidUTF8 matches every *UTF8Error.
	ErrInvalidUTF8 = errors.New("ndi: C string is not valid UTF-8")

	// ErrInvalidCString is returned when outbound text contains a NUL byte.
	ErrInvalidCString = errors.New("ndi: string contains NUL byte, cannot convert to C string")

	// ErrUnsupportedPlatform is wrapped in a *LoadError when the NDI SDK does
	// not ship a library for the running GOOS/GOARCH.
	ErrUnsupportedPlatform = errors.New("ndi: NDI SDK is only supported on Linux, macOS and Windows x86/x64")

	// ErrClosed is returned by methods called after Close.
	ErrClosed = errors.New("ndi: instance closed")
)

// LoadError reports a dynamic loader failure.
type LoadError struct {
	// Path is the file or symbol the loader was asked for.
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("ndi: failed to load NDI library %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrLoading }

// MissingSymbolError reports an absent entry in the NDIlib_v5 table.
type MissingSymbolError struct {
	Symbol string
}

func (e *MissingSymbolError) Error() string {
	return "ndi: NDIlib_v5 table is missing symbol: " + e.Symbol
}

func (e *MissingSymbolError) Is(target error) bool { return target == ErrMissingSymbol }

// NullPointerError reports a NULL result from a native call that must not
// return one. Call names the call site.
type NullPointerError struct {
	Call string
}

func (e *NullPointerError) Error() string {
	return "ndi: NDIlib_v5 function returned a NULL pointer unexpectedly: " + e.Call
}

func (e *NullPointerError) Is(target error) bool { return target == ErrUnexpectedNullPointer }

// UTF8Error reports a native string that is not valid UTF-8. Offset is the
// index of the first invalid byte.
type UTF8Error struct {
	Offset int
}

func (e *UTF8Error) Error() string {
	return fmt.Sprintf("ndi: failed to parse C string as valid UTF-8: invalid byte at offset %d", e.Offset)
}

func (e *UTF8Error) Is(target error) bool { return target == ErrInvalidUTF8 }

func missingSymbol(name string) error { return &MissingSymbolError{Symbol: name} }

func nullPointer(call string) error { return &NullPointerError{Call: call} }
