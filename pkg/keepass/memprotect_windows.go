//go:build windows

package keepass

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// lockMemory pins the password bytes with VirtualLock. Best-effort.
func lockMemory(b []byte) {
	if len(b) > 0 {
		_ = windows.VirtualLock(uintptr(unsafe.Pointer(&b[0])), uintptr(len(b)))
	}
}

// unlockMemory releases previously pinned pages. Best-effort.
func unlockMemory(b []byte) {
	if len(b) > 0 {
		_ = windows.VirtualUnlock(uintptr(unsafe.Pointer(&b[0])), uintptr(len(b)))
	}
}

// disableCoreDumps is a no-op on Windows; there is no RLIMIT_CORE
// equivalent to clear.
func disableCoreDumps() {}
