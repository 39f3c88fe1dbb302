package ndi

import (
	"context"
	"fmt"
	"math"
	"net/netip"
	"runtime"
	"strings"
	"sync"
	"time"
	"unsafe"

	log "github.com/sirupsen/logrus"
)

// FindSettings configures a Find. The zero value is not useful; start from
// NewFindSettings.
type FindSettings struct {
	showLocalSources bool
	groups           []string
	extraIPs         []netip.Addr
}

// NewFindSettings returns settings matching the SDK defaults: local sources
// shown, default groups, no extra IPs.
func NewFindSettings() *FindSettings {
	return &FindSettings{showLocalSources: true}
}

// ShowLocalSources sets whether sources on this machine are reported.
func (s *FindSettings) ShowLocalSources(show bool) *FindSettings {
	s.showLocalSources = show
	return s
}

// AddGroup restricts discovery to the named group. May be repeated.
func (s *FindSettings) AddGroup(group string) *FindSettings {
	s.groups = append(s.groups, group)
	return s
}

// AddExtraIP adds a machine to query directly, for networks without mDNS.
func (s *FindSettings) AddExtraIP(addr netip.Addr) *FindSettings {
	s.extraIPs = append(s.extraIPs, addr)
	return s
}

// withFindCreateRecord marshals s into a transient NDIlib_find_create_t and
// calls use with it. A nil s passes a nil record, meaning SDK defaults.
func withFindCreateRecord[T any](s *FindSettings, use func(rec *findCreateRecord) T) (T, error) {
	if s == nil {
		return use(nil), nil
	}
	return withCStrings(func(c *cStrings) (T, error) {
		var zero T
		groups, err := c.optional(strings.Join(s.groups, ","))
		if err != nil {
			return zero, fmt.Errorf("find groups: %w", err)
		}
		ips := make([]string, 0, len(s.extraIPs))
		for _, ip := range s.extraIPs {
			ips = append(ips, ip.String())
		}
		extraIPs, err := c.optional(strings.Join(ips, ","))
		if err != nil {
			return zero, fmt.Errorf("find extra ips: %w", err)
		}
		rec := &findCreateRecord{
			showLocalSources: s.showLocalSources,
			groups:           groups,
			extraIPs:         extraIPs,
		}
		c.pin(rec)
		return use(rec), nil
	})
}

// Find is a discovery session. Calls on one Find are serialized, so it may
// be handed between goroutines, but a WaitForSources in progress holds it
// for the whole timeout.
type Find struct {
	lib *funcTable

	mu      sync.Mutex
	session *findSession
	cleanup runtime.Cleanup
}

type findSession struct {
	lib    *funcTable
	handle uintptr
	once   sync.Once
}

func (s *findSession) destroy() error {
	var err error
	s.once.Do(func() {
		if s.lib.findDestroy == nil {
			err = missingSymbol("find_destroy")
			return
		}
		s.lib.findDestroy(s.handle)
		logger().WithField("handle", s.handle).Trace("Destroyed find instance")
	})
	return err
}

// NewFind creates a discovery session. A nil settings uses SDK defaults.
func NewFind(settings *FindSettings) (*Find, error) {
	t, err := library()
	if err != nil {
		return nil, err
	}
	return newFind(t, settings)
}

func newFind(t *funcTable, settings *FindSettings) (*Find, error) {
	if t.findCreateV2 == nil {
		return nil, missingSymbol("find_create_v2")
	}
	handle, err := withFindCreateRecord(settings, func(rec *findCreateRecord) uintptr {
		return t.findCreateV2(unsafe.Pointer(rec))
	})
	if err != nil {
		return nil, err
	}
	if handle == 0 {
		return nil, nullPointer("find_create_v2")
	}

	session := &findSession{lib: t, handle: handle}
	f := &Find{lib: t, session: session}
	f.cleanup = runtime.AddCleanup(f, func(s *findSession) {
		if err := s.destroy(); err != nil {
			logger().WithError(err).Warn("Could not destroy unreachable find instance")
		}
	}, session)

	logger().WithField("handle", handle).Trace("Created find instance")
	return f, nil
}

// WaitForSources blocks until the set of visible sources changes or
// timeout elapses, and reports whether it changed. The wait happens in
// native code and cannot be interrupted; run it on its own goroutine if
// the caller must stay responsive.
func (f *Find) WaitForSources(timeout time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.session == nil {
		return false, ErrClosed
	}
	if f.lib.findWaitForSources == nil {
		return false, missingSymbol("find_wait_for_sources")
	}
	return f.lib.findWaitForSources(f.session.handle, timeoutMillis(timeout)), nil
}

// CurrentSources returns the sources visible right now. No sources is an
// empty slice, not an error.
func (f *Find) CurrentSources() ([]Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.session == nil {
		return nil, ErrClosed
	}
	if f.lib.findGetCurrentSources == nil {
		return nil, missingSymbol("find_get_current_sources")
	}
	var count uint32
	first := f.lib.findGetCurrentSources(f.session.handle, &count)
	return sourcesFromArray(first, count, "find_get_current_sources")
}

// WaitForSource polls until a source called name is visible or ctx is
// done. poll bounds each native wait and so how late cancellation is
// noticed; values <= 0 mean one second.
func (f *Find) WaitForSource(ctx context.Context, name string, poll time.Duration) (Source, error) {
	if poll <= 0 {
		poll = time.Second
	}
	for {
		if err := ctx.Err(); err != nil {
			return Source{}, err
		}
		sources, err := f.CurrentSources()
		if err != nil {
			return Source{}, err
		}
		for _, src := range sources {
			if src.Name == name {
				return src, nil
			}
		}

		wait := poll
		if deadline, ok := ctx.Deadline(); ok {
			wait = min(wait, time.Until(deadline))
		}
		if _, err := f.WaitForSources(wait); err != nil {
			return Source{}, err
		}
		logger().WithFields(log.Fields{
			"name":    name,
			"visible": len(sources),
		}).Trace("Still waiting for source")
	}
}

// Close destroys the discovery session. It waits for a WaitForSources in
// progress and is safe to call more than once.
func (f *Find) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.session == nil {
		return nil
	}
	session := f.session
	f.session = nil
	f.cleanup.Stop()
	return session.destroy()
}

func timeoutMillis(d time.Duration) uint32 {
	ms := d.Milliseconds()
	switch {
	case ms <= 0:
		return 0
	case ms > math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(ms)
}
