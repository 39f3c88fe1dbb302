package ndi

import (
	"runtime"
	"strings"
	"unicode/utf8"
	"unsafe"
)

// cStringBytes returns a view of the NUL-terminated string at p, without
// the terminator. The view aliases native memory and must be copied before
// the owning native call returns.
func cStringBytes(p *byte) []byte {
	if p == nil {
		return nil
	}
	var length int
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), length)) != 0 {
		length++
	}
	return unsafe.Slice(p, length)
}

// goString copies a native string into Go memory and fails on invalid
// UTF-8. This is the default inbound policy.
func goString(p *byte) (string, error) {
	b := cStringBytes(p)
	if !utf8.Valid(b) {
		return "", &UTF8Error{Offset: firstInvalidUTF8(b)}
	}
	return string(b), nil
}

// goStringLossy copies a native string into Go memory, replacing invalid
// sequences with U+FFFD. Only used for diagnostic text (Version).
func goStringLossy(p *byte) string {
	return strings.ToValidUTF8(string(cStringBytes(p)), "\uFFFD")
}

func firstInvalidUTF8(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(b)
}

// cString returns a NUL-terminated copy of s.
func cString(s string) ([]byte, error) {
	if strings.IndexByte(s, 0) >= 0 {
		return nil, ErrInvalidCString
	}
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	return buf, nil
}

// cStrings owns the outbound buffers of a single native call. Everything
// handed out is pinned so native records may point at it, and stays valid
// until release. Use it through withCStrings only.
type cStrings struct {
	pinner runtime.Pinner
}

// ptr marshals s and returns a pointer to its first byte.
func (c *cStrings) ptr(s string) (*byte, error) {
	buf, err := cString(s)
	if err != nil {
		return nil, err
	}
	c.pinner.Pin(&buf[0])
	return &buf[0], nil
}

// optional is ptr, except that the empty string becomes NULL.
func (c *cStrings) optional(s string) (*byte, error) {
	if s == "" {
		return nil, nil
	}
	return c.ptr(s)
}

// pin keeps a record that references marshaled buffers in place.
func (c *cStrings) pin(p any) {
	c.pinner.Pin(p)
}

func (c *cStrings) release() {
	c.pinner.Unpin()
}

// withCStrings runs use with a fresh buffer scope and releases every
// buffer after use returns. Neither the buffers nor records built on them
// may be retained past use.
func withCStrings[T any](use func(c *cStrings) (T, error)) (T, error) {
	var c cStrings
	defer c.release()
	return use(&c)
}
