package allocator

import "unsafe"

// Global allocation functions for convenience.
//
// These delegate to Default(), the process-wide Allocator constructed on
// first use. Most callers never need to construct their own *Allocator;
// New is exposed for the benchmark harness and tests that want an
// isolated heap.

// Alloc allocates size bytes using the default allocator.
func Alloc(size uintptr) unsafe.Pointer {
	return Default().Alloc(size)
}

// Zalloc allocates count*size zero-filled bytes using the default
// allocator.
func Zalloc(count, size uintptr) unsafe.Pointer {
	return Default().Zalloc(count, size)
}

// Free releases p using the default allocator.
func Free(p unsafe.Pointer) {
	Default().Free(p)
}

// Realloc resizes p to size bytes using the default allocator.
func Realloc(p unsafe.Pointer, size uintptr) unsafe.Pointer {
	return Default().Realloc(p, size)
}

// NumFreeBlocks returns the default allocator's free-block count.
func NumFreeBlocks() uintptr { return Default().NumFreeBlocks() }

// NumFreeBytes returns the default allocator's free-byte total.
func NumFreeBytes() uintptr { return Default().NumFreeBytes() }

// NumAllocatedBlocks returns the default allocator's live descriptor
// count across both heaps.
func NumAllocatedBlocks() uintptr { return Default().NumAllocatedBlocks() }

// NumAllocatedBytes returns the default allocator's live payload byte
// total across both heaps.
func NumAllocatedBytes() uintptr { return Default().NumAllocatedBytes() }

// NumMetaDataBytes returns the default allocator's total descriptor
// overhead across both heaps.
func NumMetaDataBytes() uintptr { return Default().NumMetaDataBytes() }
