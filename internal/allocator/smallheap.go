package allocator

import (
	"unsafe"

	"github.com/orizon-lang/udalloc/internal/allocerr"
	"github.com/orizon-lang/udalloc/internal/osmem"
)

// minSplitRemainder is the smallest remainder split is willing to carve
// off as a free sliver; a smaller remainder is left attached to the
// reused block instead of becoming a dangling free block.
const minSplitRemainder = 128

// SmallHeap is a doubly-linked, address-ordered list of descriptors over
// a single arena grown via an emulated program break. It implements
// first-fit search, splitting, neighbor coalescing and wilderness
// extension exactly as specified.
type SmallHeap struct {
	head, tail *descriptor
	count      uintptr
	brk        *osmem.ProgramBreak
}

// Init reserves the heap's backing address span. New calls it once at
// construction; Alloc calls it again only while no reservation is in
// place (h.brk is nil).
func (h *SmallHeap) Init(reserve uintptr) error {
	brk, err := osmem.NewProgramBreak(reserve)
	if err != nil {
		return err
	}

	h.brk = brk

	return nil
}

// Len returns the number of descriptors currently in the list.
func (h *SmallHeap) Len() uintptr { return h.count }

// Append finds or creates a block of exactly size payload bytes.
func (h *SmallHeap) Append(size uintptr) (unsafe.Pointer, error) {
	for b := h.head; b != nil; b = b.next {
		if b.next == nil {
			// Wilderness: the scan reached the tail without finding an
			// earlier first-fit candidate.
			if b.isFree {
				if b.size >= size {
					h.split(b, size)
					b.isFree = false

					return b.payloadPtr(), nil
				}

				return h.enlargeWilderness(size)
			}

			break
		}

		if b.isFree && b.size >= size {
			h.split(b, size)
			b.isFree = false

			return b.payloadPtr(), nil
		}
	}

	return h.extendFresh(size)
}

// extendFresh grows the program break by exactly enough for one new
// live block and links it at the tail.
func (h *SmallHeap) extendFresh(size uintptr) (unsafe.Pointer, error) {
	base, err := h.brk.Extend(metaDataSize + size)
	if err != nil {
		return nil, allocerr.OSExtendFail(metaDataSize+size, err)
	}

	d := descriptorAt(base)
	d.size = size
	d.isFree = false
	d.own = kindSmall
	d.prev = h.tail
	d.next = nil

	h.linkTail(d)

	return d.payloadPtr(), nil
}

// linkTail appends an already-initialized descriptor at the end of the
// list, updating head/tail/count.
func (h *SmallHeap) linkTail(d *descriptor) {
	if h.tail != nil {
		h.tail.next = d
	} else {
		h.head = d
	}

	h.tail = d
	h.count++
}

// split carves an unused tail off block if the remainder would be at
// least metaDataSize+minSplitRemainder bytes; otherwise it is a no-op and
// block keeps its original size (preserving the exact `<` boundary the
// spec fixes).
func (h *SmallHeap) split(block *descriptor, newSize uintptr) {
	if block.size < newSize+metaDataSize+minSplitRemainder {
		return
	}

	remainder := block.size - newSize - metaDataSize
	right := descriptorAt(block.addr() + metaDataSize + newSize)
	right.size = remainder
	right.isFree = true
	right.own = block.own
	right.prev = block
	right.next = block.next

	if block.next != nil {
		block.next.prev = right
	} else {
		h.tail = right
	}

	block.next = right
	block.size = newSize
	h.count++
}

// merge fuses right into left: left absorbs right's descriptor bytes and
// payload as part of its own payload, right is unlinked and destroyed.
// The merged block's freeness is left to the caller.
func (h *SmallHeap) merge(left, right *descriptor) {
	left.size += metaDataSize + right.size
	left.next = right.next

	if right.next != nil {
		right.next.prev = left
	} else {
		h.tail = left
	}

	h.count--
}

// Free marks the descriptor behind p as free and coalesces with
// whichever neighbors are themselves free, preserving the invariant that
// no two adjacent small blocks are both free.
func (h *SmallHeap) Free(p unsafe.Pointer) {
	d := descriptorFromPayload(p)

	prevFree := d.prev != nil && d.prev.isFree
	nextFree := d.next != nil && d.next.isFree

	switch {
	case prevFree && nextFree:
		h.merge(d, d.next)
		h.merge(d.prev, d)
		d.prev.isFree = true
	case nextFree:
		h.merge(d, d.next)
		d.isFree = true
	case prevFree:
		h.merge(d.prev, d)
	default:
		d.isFree = true
	}
}

// enlargeWilderness grows the tail block in place and marks it live.
// Precondition: the tail exists, is either free or the live block being
// reallocated, and is smaller than size.
func (h *SmallHeap) enlargeWilderness(size uintptr) (unsafe.Pointer, error) {
	tail := h.tail
	delta := size - tail.size

	if _, err := h.brk.Extend(delta); err != nil {
		return nil, allocerr.OSExtendFail(delta, err)
	}

	tail.isFree = false
	tail.size = size

	return tail.payloadPtr(), nil
}

// GetSize returns the payload size of the block owning p.
func (h *SmallHeap) GetSize(p unsafe.Pointer) (uintptr, bool) {
	d := h.find(p)
	if d == nil {
		return 0, false
	}

	return d.size, true
}

// Contains reports whether p is a live payload pointer from this heap.
func (h *SmallHeap) Contains(p unsafe.Pointer) bool {
	return h.find(p) != nil
}

func (h *SmallHeap) find(p unsafe.Pointer) *descriptor {
	target := uintptr(p)
	for b := h.head; b != nil; b = b.next {
		if uintptr(b.payloadPtr()) == target {
			return b
		}
	}

	return nil
}

// descriptorFor is find exposed for realloc, which already knows p is a
// member of this heap (it checked Contains) and needs the descriptor
// itself rather than just a size.
func (h *SmallHeap) descriptorFor(p unsafe.Pointer) *descriptor {
	return h.find(p)
}

// freeBytesAndBlocks walks the list once, returning the free block count
// and free byte total together so counters never need two passes.
func (h *SmallHeap) freeBytesAndBlocks() (blocks, bytes uintptr) {
	for b := h.head; b != nil; b = b.next {
		if b.isFree {
			blocks++
			bytes += b.size
		}
	}

	return blocks, bytes
}

// totalBytes sums payload size across every descriptor in the heap.
func (h *SmallHeap) totalBytes() uintptr {
	var total uintptr
	for b := h.head; b != nil; b = b.next {
		total += b.size
	}

	return total
}
