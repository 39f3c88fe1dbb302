package ndi

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"unsafe"

	log "github.com/sirupsen/logrus"
)

// Route is a routing output: it appears on the network as a source named
// Name and forwards whichever source it is currently pointed at.
//
// A Route may be used from many goroutines. Change and Clear calls are
// serialized on the underlying instance. Clone hands out further holders of
// the same instance; the native instance is destroyed when the last holder
// is closed.
type Route struct {
	session *routeSession
	closed  atomic.Bool
	once    sync.Once
	cleanup runtime.Cleanup
}

// routeSession is the native routing instance shared by all holders.
type routeSession struct {
	lib  *funcTable
	name string

	mu     sync.Mutex
	handle uintptr // 0 once destroyed
	refs   int
}

// NewRoute creates a routing output called name, advertised in groups. No
// groups means the SDK default group.
func NewRoute(name string, groups ...string) (*Route, error) {
	t, err := library()
	if err != nil {
		return nil, err
	}
	return newRoute(t, name, groups)
}

func newRoute(t *funcTable, name string, groups []string) (*Route, error) {
	if t.routingCreate == nil {
		return nil, missingSymbol("routing_create")
	}
	handle, err := withCStrings(func(c *cStrings) (uintptr, error) {
		ndiName, err := c.ptr(name)
		if err != nil {
			return 0, fmt.Errorf("route name: %w", err)
		}
		ndiGroups, err := c.optional(strings.Join(groups, ","))
		if err != nil {
			return 0, fmt.Errorf("route groups: %w", err)
		}
		rec := &routingCreateRecord{name: ndiName, groups: ndiGroups}
		c.pin(rec)
		return t.routingCreate(unsafe.Pointer(rec)), nil
	})
	if err != nil {
		return nil, err
	}
	if handle == 0 {
		return nil, nullPointer("routing_create")
	}

	logger().WithFields(log.Fields{
		"name":   name,
		"groups": groups,
	}).Debug("Created route")
	return newRouteHolder(&routeSession{lib: t, name: name, handle: handle, refs: 1}), nil
}

func newRouteHolder(s *routeSession) *Route {
	r := &Route{session: s}
	r.cleanup = runtime.AddCleanup(r, func(s *routeSession) {
		if err := s.release(); err != nil {
			logger().WithError(err).Warn("Could not release unreachable route")
		}
	}, s)
	return r
}

// Name returns the name the route was created with, or "" for a zero
// Route.
func (r *Route) Name() string {
	if r.session == nil {
		return ""
	}
	return r.session.name
}

// Clone returns another holder of the same routing instance. Each holder
// must be closed.
func (r *Route) Clone() (*Route, error) {
	if r.session == nil || r.closed.Load() {
		return nil, ErrClosed
	}
	s := r.session
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == 0 {
		return nil, ErrClosed
	}
	s.refs++
	return newRouteHolder(s), nil
}

// Change points the route at src.
func (r *Route) Change(src Source) error {
	if r.session == nil || r.closed.Load() {
		return ErrClosed
	}
	change := r.session.lib.routingChange
	if change == nil {
		return missingSymbol("routing_change")
	}
	err := r.do(func(handle uintptr) error {
		// The result has no documented meaning.
		_, err := withSourceRecord(src, func(rec *sourceRecord) bool {
			return change(handle, unsafe.Pointer(rec))
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("route %q: change to %s: %w", r.session.name, src, err)
	}
	logger().WithFields(log.Fields{
		"route":  r.session.name,
		"source": src.String(),
	}).Debug("Route changed")
	return nil
}

// Clear detaches the route from its current source.
func (r *Route) Clear() error {
	if r.session == nil || r.closed.Load() {
		return ErrClosed
	}
	clearFn := r.session.lib.routingClear
	if clearFn == nil {
		return missingSymbol("routing_clear")
	}
	err := r.do(func(handle uintptr) error {
		clearFn(handle)
		return nil
	})
	if err != nil {
		return fmt.Errorf("route %q: clear: %w", r.session.name, err)
	}
	return nil
}

// Close releases this holder. The routing instance is destroyed when the
// last holder is closed. It waits for a Change or Clear in progress on
// the instance. Closing a holder twice, or a zero Route, is a no-op.
func (r *Route) Close() error {
	if r.session == nil {
		return nil
	}
	var err error
	r.once.Do(func() {
		r.closed.Store(true)
		r.cleanup.Stop()
		err = r.session.release()
	})
	return err
}

// do runs fn with exclusive access to the live handle. closed is checked
// again under the lock: once Close has started on this holder, no call made
// through it reaches the native instance, even while clones keep it alive.
func (r *Route) do(fn func(handle uintptr) error) error {
	s := r.session
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.closed.Load() || s.handle == 0 {
		return ErrClosed
	}
	return fn(s.handle)
}

func (s *routeSession) release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refs--
	if s.refs > 0 || s.handle == 0 {
		return nil
	}
	handle := s.handle
	s.handle = 0
	if s.lib.routingDestroy == nil {
		return missingSymbol("routing_destroy")
	}
	s.lib.routingDestroy(handle)
	logger().WithField("name", s.name).Debug("Destroyed route")
	return nil
}
