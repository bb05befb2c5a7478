//go:build unix

package osmem

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

const pageSize = 4096

func pageRoundUp(n uintptr) uintptr {
	return (n + pageSize - 1) &^ (pageSize - 1)
}

// reserveAddressSpace mmaps `reserve` bytes as PROT_NONE: address space is
// set aside but no physical page is backing it yet.
func reserveAddressSpace(reserve uintptr) (uintptr, error) {
	reserve = pageRoundUp(reserve)

	b, err := unix.Mmap(-1, 0, int(reserve), unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return 0, err
	}

	return uintptr(unsafe.Pointer(&b[0])), nil
}

// commitRange marks [base+from, base+to) readable/writable, rounding the
// newly committed tail up to whole pages.
func commitRange(base, from, to uintptr) error {
	start := base + pageRoundUp(from)
	end := base + pageRoundUp(to)
	if end <= start {
		return nil
	}

	region := unsafe.Slice((*byte)(unsafe.Pointer(start)), end-start)

	return unix.Mprotect(region, unix.PROT_READ|unix.PROT_WRITE)
}

func mapAnonymous(size uintptr) (uintptr, error) {
	b, err := unix.Mmap(-1, 0, int(pageRoundUp(size)), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return 0, err
	}

	return uintptr(unsafe.Pointer(&b[0])), nil
}

func unmapAnonymous(addr, size uintptr) error {
	region := unsafe.Slice((*byte)(unsafe.Pointer(addr)), pageRoundUp(size))

	return unix.Munmap(region)
}
