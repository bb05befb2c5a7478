package allocator

import (
	"unsafe"

	"github.com/orizon-lang/udalloc/internal/allocerr"
)

// Realloc implements the full §4.4 state machine: in-place shrink,
// wilderness extension, merge-right, merge-left, merge-both, and finally
// copy-and-relocate. Each case is tried in order and the first one that
// succeeds wins; on total failure the original block is left untouched
// and nil is returned.
func (a *Allocator) Realloc(p unsafe.Pointer, size uintptr) unsafe.Pointer {
	if p == nil {
		return a.Alloc(size)
	}

	if !validSize(size) {
		a.setLastError(allocerr.SizeOutOfRange(size, MaxSize))

		return nil
	}

	if a.small.Contains(p) {
		return a.reallocSmall(p, size)
	}

	if a.large.Contains(p) {
		return a.reallocLarge(p, size)
	}

	a.setLastError(allocerr.UnknownPointer("realloc"))

	return nil
}

func (a *Allocator) reallocSmall(p unsafe.Pointer, size uintptr) unsafe.Pointer {
	old := a.small.descriptorFor(p)
	if old.size == size {
		return p // 1. no-op
	}

	if size < old.size {
		a.small.split(old, size) // 2. shrink in place; no-op split keeps p valid
		return p
	}

	diff := int64(size) - int64(old.size) - int64(metaDataSize)

	if old == a.small.tail { // 3. wilderness extend
		if np, err := a.small.enlargeWilderness(size); err == nil {
			return np
		}
	}

	if next := old.next; next != nil && next.isFree && int64(next.size) >= diff { // 4. merge right
		a.small.merge(old, next)
		a.small.split(old, size)
		old.isFree = false

		return old.payloadPtr()
	}

	if prev := old.prev; prev != nil && prev.isFree && int64(prev.size) >= diff { // 5. merge left
		oldPayload, oldSize := old.payloadPtr(), old.size

		a.small.merge(prev, old)
		movePayload(prev.payloadPtr(), oldPayload, oldSize)
		a.small.split(prev, size)
		prev.isFree = false

		return prev.payloadPtr()
	}

	if prev, next := old.prev, old.next; prev != nil && next != nil && prev.isFree && next.isFree {
		// 6. merge both: the inner boundary absorbed by merging old into
		// prev credits one extra descriptor's worth of bytes, so the
		// combined-size test is relaxed by metaDataSize relative to the
		// merge-right/merge-left tests above.
		combined := int64(prev.size) + int64(next.size)
		if combined >= diff-int64(metaDataSize) {
			oldPayload, oldSize := old.payloadPtr(), old.size

			a.small.merge(prev, old)
			a.small.merge(prev, next)
			movePayload(prev.payloadPtr(), oldPayload, oldSize)
			a.small.split(prev, size)
			prev.isFree = false

			return prev.payloadPtr()
		}
	}

	return a.relocate(p, old.size, size, a.small.Append) // 7. relocate, staying in the small heap
}

func (a *Allocator) reallocLarge(p unsafe.Pointer, size uintptr) unsafe.Pointer {
	oldSize, _ := a.large.GetSize(p)

	return a.relocate(p, oldSize, size, a.large.Append) // always relocates, staying in the large heap
}

// relocate appends a fresh block via appendFn — the owning heap's own
// append, never the facade's size-routed Alloc — copies min(oldSize,
// size) bytes into it, and frees the original. A pointer's owning heap
// must never change as a side effect of growing or shrinking it, so
// reallocSmall and reallocLarge each bind relocate to their own heap's
// Append rather than letting size dictate a reroute.
func (a *Allocator) relocate(p unsafe.Pointer, oldSize, size uintptr, appendFn func(uintptr) (unsafe.Pointer, error)) unsafe.Pointer {
	np, err := appendFn(size)
	if err != nil {
		a.setLastError(err)

		return nil
	}

	copySize := oldSize
	if size < copySize {
		copySize = size
	}

	movePayload(np, p, copySize)
	a.Free(p)

	return np
}
