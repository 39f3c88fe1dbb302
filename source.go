package ndi

import (
	"fmt"
	"unsafe"
)

// Source is an owned snapshot of an NDI endpoint. It holds no native
// memory and is safe to copy, compare and share.
type Source struct {
	// Name is the display name, typically "MACHINE (Channel)". It is not
	// guaranteed to be unique on the network.
	Name string
	// URLAddress is the endpoint address, usually host:port. An empty
	// address lets the SDK resolve the source by name.
	URLAddress string
}

// NewSource builds a Source that was not discovered by a Find, for example
// one read from configuration.
func NewSource(name, urlAddress string) Source {
	return Source{Name: name, URLAddress: urlAddress}
}

func (s Source) String() string {
	if s.URLAddress == "" {
		return s.Name
	}
	return fmt.Sprintf("%s (%s)", s.Name, s.URLAddress)
}

// sourceFromRecord copies a native NDIlib_source_t into a Source.
func sourceFromRecord(rec *sourceRecord) (Source, error) {
	if rec.name == nil {
		return Source{}, nullPointer("source.p_ndi_name")
	}
	name, err := goString(rec.name)
	if err != nil {
		return Source{}, fmt.Errorf("source name: %w", err)
	}
	// NULL is allowed here: name-only sources carry no address.
	addr, err := goString(rec.urlAddress)
	if err != nil {
		return Source{}, fmt.Errorf("source %q url address: %w", name, err)
	}
	return Source{Name: name, URLAddress: addr}, nil
}

// sourcesFromArray copies count records starting at first. The array
// belongs to the find instance and is only valid until its next call.
func sourcesFromArray(first *sourceRecord, count uint32, call string) ([]Source, error) {
	if count == 0 {
		return []Source{}, nil
	}
	if first == nil {
		return nil, nullPointer(call)
	}
	records := unsafe.Slice(first, count)
	sources := make([]Source, 0, count)
	for i := range records {
		src, err := sourceFromRecord(&records[i])
		if err != nil {
			return nil, fmt.Errorf("%s: source %d: %w", call, i, err)
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// withSourceRecord marshals s into a transient NDIlib_source_t, calls use
// with it and frees the buffers once use returns. use must not retain rec.
func withSourceRecord[T any](s Source, use func(rec *sourceRecord) T) (T, error) {
	return withCStrings(func(c *cStrings) (T, error) {
		var zero T
		name, err := c.ptr(s.Name)
		if err != nil {
			return zero, fmt.Errorf("source name: %w", err)
		}
		addr, err := c.optional(s.URLAddress)
		if err != nil {
			return zero, fmt.Errorf("source url address: %w", err)
		}
		rec := &sourceRecord{name: name, urlAddress: addr}
		c.pin(rec)
		return use(rec), nil
	})
}
