package allocator

import (
	"unsafe"

	"github.com/orizon-lang/udalloc/internal/allocerr"
	"github.com/orizon-lang/udalloc/internal/osmem"
)

// LargeHeap is a doubly-linked list of descriptors, each the base of its
// own independent anonymous page mapping. Large blocks are never reused:
// one allocation is one mapping, and Free unmaps it immediately. Order in
// the list carries no meaning (release never needs a neighbor).
type LargeHeap struct {
	head, tail *descriptor
	count      uintptr
}

// Len returns the number of descriptors currently in the list.
func (h *LargeHeap) Len() uintptr { return h.count }

// Append maps a fresh region of metaDataSize+size bytes and links its
// descriptor at the tail.
func (h *LargeHeap) Append(size uintptr) (unsafe.Pointer, error) {
	base, err := osmem.MapAnonymous(metaDataSize + size)
	if err != nil {
		return nil, allocerr.OSMapFail(metaDataSize+size, err)
	}

	d := descriptorAt(base)
	d.size = size
	d.isFree = false
	d.own = kindLarge
	d.prev = h.tail
	d.next = nil

	if h.tail != nil {
		h.tail.next = d
	} else {
		h.head = d
	}

	h.tail = d
	h.count++

	return d.payloadPtr(), nil
}

// Free unlinks the descriptor owning p and unmaps its whole region
// (descriptor + payload) in one call, matching the mapping size exactly.
func (h *LargeHeap) Free(p unsafe.Pointer) {
	d := h.find(p)
	if d == nil {
		return
	}

	h.unlink(d)

	_ = osmem.Unmap(d.addr(), metaDataSize+d.size)
}

func (h *LargeHeap) unlink(d *descriptor) {
	if d.prev != nil {
		d.prev.next = d.next
	} else {
		h.head = d.next
	}

	if d.next != nil {
		d.next.prev = d.prev
	} else {
		h.tail = d.prev
	}

	h.count--
}

// GetSize returns the payload size of the block owning p.
func (h *LargeHeap) GetSize(p unsafe.Pointer) (uintptr, bool) {
	d := h.find(p)
	if d == nil {
		return 0, false
	}

	return d.size, true
}

// Contains reports whether p is a live payload pointer from this heap.
func (h *LargeHeap) Contains(p unsafe.Pointer) bool {
	return h.find(p) != nil
}

func (h *LargeHeap) find(p unsafe.Pointer) *descriptor {
	target := uintptr(p)
	for b := h.head; b != nil; b = b.next {
		if uintptr(b.payloadPtr()) == target {
			return b
		}
	}

	return nil
}

// totalBytes sums payload size across every descriptor in the heap.
func (h *LargeHeap) totalBytes() uintptr {
	var total uintptr
	for b := h.head; b != nil; b = b.next {
		total += b.size
	}

	return total
}
