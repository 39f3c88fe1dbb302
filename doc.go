// Package ndi provides safe Go access to the NDI discovery and routing
// APIs of the native NDI runtime.
//
// Key pieces include:
//   - Find: a discovery session that waits for and lists Sources
//   - Route: a routing output that can be pointed at any Source at runtime
//   - Source: an owned snapshot of an endpoint's name and address
//
// # Native Library
//
// The runtime is loaded with purego (no cgo) the first time any API is
// used, and initialized exactly once per process. The library file is
// libndi.dylib on macOS, libndi.so.6 on other Unix systems and
// Processing.NDI.Lib.x64.dll / Processing.NDI.Lib.x86.dll on Windows.
//
// It is looked up in NDI_RUNTIME_DIR_V6 first (its lib subdirectory on
// Windows), then /usr/local/lib, then /usr/lib (not on macOS), and finally
// through the operating system's default search. If loading or
// initialization fails, every constructor returns the same error for the
// rest of the process.
//
// # Handles
//
// Find and Route own native instances and must be closed. Instances that
// become unreachable without Close are destroyed by a runtime cleanup, but
// when that happens is up to the garbage collector.
//
// Frame send and receive are not provided.
package ndi
