package allocator

import (
	"sync"
	"unsafe"

	"github.com/orizon-lang/udalloc/internal/allocerr"
)

const (
	// LargeThreshold selects which heap services a request: requests of
	// this size or larger go to the page-mapped large heap.
	LargeThreshold uintptr = 131072

	// MaxSize is the largest request either heap will ever attempt to
	// satisfy.
	MaxSize uintptr = 100_000_000
)

// Allocator owns both heaps and dispatches the four public primitives to
// whichever heap a request's size or pointer ownership selects. It is not
// goroutine-safe: the spec assumes a single-threaded caller, and adding
// locking here would contradict that Non-goal. The only synchronization
// is the one-time lazy construction guarded by sync.Once in Default() and
// the mutex around the lastErr field; neither is held during allocation.
type Allocator struct {
	small SmallHeap
	large LargeHeap
	cfg   Config

	mu      sync.Mutex // guards lastErr only; not held during allocation
	lastErr error
}

// New constructs an Allocator. The small heap's address-space reservation
// happens here, eagerly, rather than on first Alloc.
func New(opts ...Option) (*Allocator, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	a := &Allocator{cfg: cfg}
	if err := a.small.Init(cfg.InitialReserve); err != nil {
		return nil, err
	}

	return a, nil
}

var (
	defaultOnce  sync.Once
	defaultAlloc *Allocator
)

// Default returns the process-wide allocator, constructing it exactly
// once on first use. Per the spec's resource model, the two heap roots
// are process-global state initialized to empty at first touch and never
// torn down.
func Default() *Allocator {
	defaultOnce.Do(func() {
		a, err := New()
		if err != nil {
			// Construction only fails if the initial reservation itself
			// is refused by the OS, which leaves nothing usable; there is
			// no nil-returning path in the public facade to report this
			// through, so the first real allocation request will retry
			// construction via a fresh Init call instead of wedging the
			// process in a permanently broken singleton.
			a = &Allocator{cfg: defaultConfig()}
		}

		defaultAlloc = a
	})

	return defaultAlloc
}

func (a *Allocator) setLastError(err error) {
	a.mu.Lock()
	a.lastErr = err
	a.mu.Unlock()
}

// LastError returns the most recent internal failure, or nil. Purely for
// introspection/tests; it never changes what a public call returns.
func (a *Allocator) LastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.lastErr
}

func validSize(size uintptr) bool {
	return size > 0 && size <= MaxSize
}

// Alloc returns a payload pointer of exactly size bytes, or nil.
func (a *Allocator) Alloc(size uintptr) unsafe.Pointer {
	if !validSize(size) {
		a.setLastError(allocerr.SizeOutOfRange(size, MaxSize))

		return nil
	}

	if size >= LargeThreshold {
		p, err := a.large.Append(size)
		if err != nil {
			a.setLastError(err)

			return nil
		}

		return p
	}

	if a.small.brk == nil {
		if err := a.small.Init(a.cfg.InitialReserve); err != nil {
			a.setLastError(err)

			return nil
		}
	}

	p, err := a.small.Append(size)
	if err != nil {
		a.setLastError(err)

		return nil
	}

	return p
}

// Zalloc is Alloc(count*size) with the result zero-filled. The
// multiplication is checked for uintptr overflow and rejected rather than
// silently wrapping: source behavior wraps (spec.md Open Question 3,
// documented there), but a wrap that under-allocates and then zero-fills
// the caller's intended, larger length is a buffer overflow, which this
// rewrite declines to reproduce.
func (a *Allocator) Zalloc(count, size uintptr) unsafe.Pointer {
	if count == 0 || size == 0 {
		a.setLastError(allocerr.SizeOutOfRange(0, MaxSize))

		return nil
	}

	total := count * size
	if total/count != size {
		a.setLastError(allocerr.ZallocOverflow(count, size))

		return nil
	}

	p := a.Alloc(total)
	if p == nil {
		return nil
	}

	zero := unsafe.Slice((*byte)(p), total)
	for i := range zero {
		zero[i] = 0
	}

	return p
}

// Free releases p. A nil pointer is a no-op. p must have been returned by
// Alloc/Zalloc/Realloc and not previously freed; like the source, double
// free and foreign pointers are undefined behavior this implementation
// does not attempt to detect beyond the ownership probe below.
func (a *Allocator) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}

	if a.small.Contains(p) {
		a.small.Free(p)

		return
	}

	if a.large.Contains(p) {
		a.large.Free(p)

		return
	}

	a.setLastError(allocerr.UnknownPointer("free"))
}
