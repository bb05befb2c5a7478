// Package allocator implements the small/large segregated heaps behind
// udalloc's alloc/zalloc/free/realloc facade, plus the introspection
// counters layered over them.
package allocator

import "unsafe"

// kind distinguishes which heap owns a descriptor. The spec's two nearly
// identical descriptor shapes (BlockDescriptor, LargeDescriptor) are
// collapsed into one shape parameterized by this discriminant; the only
// behavioral divergence between heaps is release policy, not layout.
type kind uint8

const (
	kindSmall kind = iota
	kindLarge
)

// descriptor is placed immediately before every payload, in raw memory
// (committed program-break bytes for small blocks, a dedicated mapping
// for large blocks). Field order is frozen and the struct carries no
// embedded interfaces or variable-length data, so its footprint is fixed
// and matches metaDataSize exactly.
type descriptor struct {
	size   uintptr
	isFree bool
	own    kind
	prev   *descriptor
	next   *descriptor
}

// metaDataSize is the constant footprint of one descriptor, identical for
// both heaps by construction.
const metaDataSize = unsafe.Sizeof(descriptor{})

// descriptorAt reinterprets the memory at addr as a descriptor. Callers
// must already know a descriptor was constructed there.
func descriptorAt(addr uintptr) *descriptor {
	return (*descriptor)(unsafe.Pointer(addr))
}

// payloadPtr returns the address of the first payload byte following d,
// satisfying the invariant payload_ptr == descriptor_addr + metaDataSize.
func (d *descriptor) payloadPtr() unsafe.Pointer {
	return unsafe.Pointer(uintptr(unsafe.Pointer(d)) + metaDataSize)
}

// addr returns d's own address.
func (d *descriptor) addr() uintptr {
	return uintptr(unsafe.Pointer(d))
}

// descriptorFromPayload recovers the descriptor immediately preceding a
// payload pointer. Used once the caller has already established (via
// Contains) that the payload belongs to this heap.
func descriptorFromPayload(p unsafe.Pointer) *descriptor {
	return descriptorAt(uintptr(p) - metaDataSize)
}

// movePayload copies n bytes from src's payload to dst's payload. Built on
// the builtin copy over byte slices, which Go guarantees behaves correctly
// even when the source and destination regions overlap (unlike C's memcpy,
// this never needs a separate memmove call).
func movePayload(dst, src unsafe.Pointer, n uintptr) {
	if n == 0 {
		return
	}

	dstSlice := unsafe.Slice((*byte)(dst), n)
	srcSlice := unsafe.Slice((*byte)(src), n)
	copy(dstSlice, srcSlice)
}
