//go:build windows

package osmem

import (
	"golang.org/x/sys/windows"
)

const pageSize = 4096

func pageRoundUp(n uintptr) uintptr {
	return (n + pageSize - 1) &^ (pageSize - 1)
}

// reserveAddressSpace reserves `reserve` bytes of address space without
// committing any physical pages (MEM_RESERVE only).
func reserveAddressSpace(reserve uintptr) (uintptr, error) {
	reserve = pageRoundUp(reserve)

	addr, err := windows.VirtualAlloc(0, reserve, windows.MEM_RESERVE, windows.PAGE_NOACCESS)
	if err != nil {
		return 0, err
	}

	return addr, nil
}

// commitRange commits whole pages covering [base+from, base+to).
func commitRange(base, from, to uintptr) error {
	start := base + pageRoundUp(from)
	end := base + pageRoundUp(to)
	if end <= start {
		return nil
	}

	_, err := windows.VirtualAlloc(start, end-start, windows.MEM_COMMIT, windows.PAGE_READWRITE)

	return err
}

func mapAnonymous(size uintptr) (uintptr, error) {
	n := pageRoundUp(size)

	addr, err := windows.VirtualAlloc(0, n, windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil {
		return 0, err
	}

	return addr, nil
}

func unmapAnonymous(addr, size uintptr) error {
	_ = size // VirtualFree(MEM_RELEASE) requires size 0; the mapping releases in one piece

	return windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
}
