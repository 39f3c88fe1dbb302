package ndi

import (
	"sync"
	"sync/atomic"
	"time"
	"unsafe"
)

// fakeNative is an in-process stand-in for the NDI runtime. Its table()
// has the same shape as a bound NDIlib_v5 table; records it hands back
// point into Go memory it keeps alive.
type fakeNative struct {
	mu         sync.Mutex
	nextHandle uintptr

	// failCreate makes the create calls return NULL.
	failCreate bool

	findCreates    []findCreateCall
	findDestroyed  map[uintptr]int
	routeCreates   []routeCreateCall
	routeDestroyed map[uintptr]int

	// Current sources, as native records backed by bufs.
	records    []sourceRecord
	bufs       [][]byte
	forceCount uint32

	available chan struct{}

	changes     []Source
	clears      int
	changeDelay time.Duration
	inFlight    atomic.Int32
	overlapped  atomic.Bool
	calls       []string

	version []byte
}

type findCreateCall struct {
	nilRecord        bool
	showLocalSources bool
	groups           *string
	extraIPs         *string
}

type routeCreateCall struct {
	name   string
	groups *string
}

func newFakeNative() *fakeNative {
	return &fakeNative{
		nextHandle:     0x1000,
		findDestroyed:  make(map[uintptr]int),
		routeDestroyed: make(map[uintptr]int),
		available:      make(chan struct{}, 1),
		version:        append([]byte("NDI SDK LINUX 6.1.1"), 0),
	}
}

func (f *fakeNative) table() *funcTable {
	return &funcTable{
		initialize:     func() bool { return true },
		version:        func() *byte { return &f.version[0] },
		isSupportedCPU: func() bool { return true },

		findCreateV2:          f.findCreateV2,
		findDestroy:           f.findDestroy,
		findWaitForSources:    f.findWaitForSources,
		findGetCurrentSources: f.findGetCurrentSources,

		routingCreate:  f.routingCreate,
		routingDestroy: f.routingDestroy,
		routingChange:  f.routingChange,
		routingClear:   f.routingClear,
	}
}

func (f *fakeNative) newHandle() uintptr {
	f.nextHandle += 0x10
	return f.nextHandle
}

// optionalString reads a nullable C string field.
func optionalString(p *byte) *string {
	if p == nil {
		return nil
	}
	s := string(cStringBytes(p))
	return &s
}

func (f *fakeNative) findCreateV2(settings unsafe.Pointer) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := findCreateCall{nilRecord: settings == nil}
	if settings != nil {
		rec := (*findCreateRecord)(settings)
		call.showLocalSources = rec.showLocalSources
		call.groups = optionalString(rec.groups)
		call.extraIPs = optionalString(rec.extraIPs)
	}
	f.findCreates = append(f.findCreates, call)
	if f.failCreate {
		return 0
	}
	return f.newHandle()
}

func (f *fakeNative) findDestroy(instance uintptr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findDestroyed[instance]++
}

func (f *fakeNative) findWaitForSources(instance uintptr, timeoutMs uint32) bool {
	select {
	case <-f.available:
		return true
	case <-time.After(time.Duration(timeoutMs) * time.Millisecond):
		return false
	}
}

func (f *fakeNative) findGetCurrentSources(instance uintptr, count *uint32) *sourceRecord {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := uint32(len(f.records))
	if f.forceCount != 0 {
		n = f.forceCount
	}
	*count = n
	if len(f.records) == 0 {
		return nil
	}
	return &f.records[0]
}

func (f *fakeNative) routingCreate(settings unsafe.Pointer) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec := (*routingCreateRecord)(settings)
	f.routeCreates = append(f.routeCreates, routeCreateCall{
		name:   string(cStringBytes(rec.name)),
		groups: optionalString(rec.groups),
	})
	if f.failCreate {
		return 0
	}
	return f.newHandle()
}

func (f *fakeNative) routingDestroy(instance uintptr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routeDestroyed[instance]++
}

// enter and leave bracket a mutating routing call and record overlap.
func (f *fakeNative) enter(call string) {
	if f.inFlight.Add(1) > 1 {
		f.overlapped.Store(true)
	}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	if f.changeDelay > 0 {
		time.Sleep(f.changeDelay)
	}
}

func (f *fakeNative) leave() {
	f.inFlight.Add(-1)
}

func (f *fakeNative) routingChange(instance uintptr, source unsafe.Pointer) bool {
	f.enter("change")
	defer f.leave()

	src, err := sourceFromRecord((*sourceRecord)(source))
	if err != nil {
		panic(err)
	}
	f.mu.Lock()
	f.changes = append(f.changes, src)
	f.mu.Unlock()
	return true
}

func (f *fakeNative) routingClear(instance uintptr) bool {
	f.enter("clear")
	defer f.leave()

	f.mu.Lock()
	f.clears++
	f.mu.Unlock()
	return true
}

// setSources replaces the visible sources.
func (f *fakeNative) setSources(sources ...Source) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.records = nil
	f.bufs = nil
	for _, src := range sources {
		rec := sourceRecord{name: f.keep(append([]byte(src.Name), 0))}
		if src.URLAddress != "" {
			rec.urlAddress = f.keep(append([]byte(src.URLAddress), 0))
		}
		f.records = append(f.records, rec)
	}
}

// setRawRecords installs records as-is, for malformed native data.
func (f *fakeNative) setRawRecords(records ...sourceRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = records
}

func (f *fakeNative) keep(buf []byte) *byte {
	f.bufs = append(f.bufs, buf)
	return &buf[0]
}

// signal makes one pending or future wait report new sources.
func (f *fakeNative) signal() {
	select {
	case f.available <- struct{}{}:
	default:
	}
}

func (f *fakeNative) findDestroyCount(handle uintptr) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.findDestroyed[handle]
}

func (f *fakeNative) routeDestroyCount(handle uintptr) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.routeDestroyed[handle]
}

func (f *fakeNative) totalRouteDestroys() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int
	for _, c := range f.routeDestroyed {
		n += c
	}
	return n
}

func (f *fakeNative) recordedChanges() []Source {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Source(nil), f.changes...)
}
