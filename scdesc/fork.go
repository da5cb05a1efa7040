package scdesc

import (
	"os"

	"golang.org/x/sys/unix"

	"sysfuzz/argpool"
)

// cloneFlags are the candidate flags for the clone descriptor, Linux's
// fine-grained-sharing analogue of the source's rfork.
var cloneFlags = []uint64{
	uint64(unix.CLONE_VM),
	uint64(unix.CLONE_FILES),
	uint64(unix.CLONE_FS),
	uint64(unix.CLONE_SIGHAND),
	uint64(unix.CLONE_THREAD),
	uint64(unix.CLONE_PARENT),
	uint64(unix.CLONE_VFORK),
}

func init() {
	Register(&Descriptor{
		Num:     unix.SYS_FORK,
		Name:    "fork",
		Nargs:   0,
		Groups:  GroupFork,
		Cleanup: forkCleanup,
	})

	Register(&Descriptor{
		Num:     unix.SYS_VFORK,
		Name:    "vfork",
		Nargs:   0,
		Groups:  GroupFork,
		Cleanup: forkCleanup,
	})

	// clone stands in for the source's rfork: Linux has no rfork syscall,
	// but clone(2) offers the same per-resource sharing control (the RF*
	// flags map onto CLONE_* flags one for one).
	Register(&Descriptor{
		Num:     unix.SYS_CLONE,
		Name:    "clone",
		Nargs:   1,
		Groups:  GroupFork,
		Fixup:   cloneFixup,
		Cleanup: forkCleanup,
		Args: [MaxArgs]ArgDesc{
			{Type: ArgIflagmask, Name: "flags", Flags: cloneFlags},
		},
	})
}

// cloneFixup forces a new process (clears CLONE_THREAD) and clears
// CLONE_VM, mirroring rfork_fixup's RFPROC-forced/RFMEM-cleared pairing: a
// thread or VM-sharing child would corrupt the calling worker's own pools.
func cloneFixup(pool *argpool.Pool, args *Args) {
	args[0] &^= uint64(unix.CLONE_THREAD)
	args[0] &^= uint64(unix.CLONE_VM)
}

// forkCleanup implements the non-returning fork-family hook: the child
// branch (ret == 0) exits immediately without returning to the fuzz loop;
// the parent branch waits for it and requires a clean exit.
func forkCleanup(pool *argpool.Pool, args *Args, ret uintptr, errno error) {
	if ret == 0 {
		ChildExit(0)
		return // unreachable outside tests stubbing ChildExit
	}
	if errno != nil {
		return
	}
	var status unix.WaitStatus
	if _, err := unix.Wait4(int(ret), &status, 0, nil); err != nil {
		os.Exit(1)
	}
	if !status.Exited() || status.ExitStatus() != 0 {
		os.Exit(1)
	}
}
