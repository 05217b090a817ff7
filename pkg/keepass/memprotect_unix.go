//go:build linux || darwin

package keepass

import "syscall"

// lockMemory pins the password bytes so they cannot be swapped to disk.
// Best-effort: failure is silently ignored (process may lack CAP_IPC_LOCK).
func lockMemory(b []byte) {
	if len(b) > 0 {
		_ = syscall.Mlock(b)
	}
}

// unlockMemory releases previously pinned pages. Best-effort.
func unlockMemory(b []byte) {
	if len(b) > 0 {
		_ = syscall.Munlock(b)
	}
}

// disableCoreDumps sets RLIMIT_CORE to 0 so the master password cannot end
// up in a core file. Best-effort.
func disableCoreDumps() {
	_ = syscall.Setrlimit(syscall.RLIMIT_CORE, &syscall.Rlimit{Cur: 0, Max: 0})
}
