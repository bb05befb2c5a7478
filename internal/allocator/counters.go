package allocator

// Five pure, side-effect-free accumulators over the descriptor lists,
// plus the one compile-time constant. NumFreeBlocks, NumFreeBytes and
// NumAllocatedBytes walk each list once; NumAllocatedBlocks and
// NumMetaDataBytes read the block counts each heap maintains.

// MetaDataSize is the constant footprint of one descriptor; both heaps'
// descriptors have identical size by construction.
func MetaDataSize() uintptr { return metaDataSize }

// NumFreeBlocks counts small blocks with isFree set. Large blocks are
// never free (they are unmapped on release instead).
func (a *Allocator) NumFreeBlocks() uintptr {
	blocks, _ := a.small.freeBytesAndBlocks()

	return blocks
}

// NumFreeBytes sums payload size over free small blocks.
func (a *Allocator) NumFreeBytes() uintptr {
	_, bytes := a.small.freeBytesAndBlocks()

	return bytes
}

// NumAllocatedBlocks is the total descriptor count across both heaps.
func (a *Allocator) NumAllocatedBlocks() uintptr {
	return a.small.Len() + a.large.Len()
}

// NumAllocatedBytes sums payload size over every descriptor in both
// heaps.
func (a *Allocator) NumAllocatedBytes() uintptr {
	return a.small.totalBytes() + a.large.totalBytes()
}

// NumMetaDataBytes sums descriptor overhead across both heaps.
func (a *Allocator) NumMetaDataBytes() uintptr {
	return a.NumAllocatedBlocks() * metaDataSize
}
