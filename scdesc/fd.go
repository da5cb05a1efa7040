package scdesc

import (
	"golang.org/x/sys/unix"

	"sysfuzz/argpool"
)

// Supplemented beyond the source: close, open/openat, and an *at-family
// directory group. The source only ever seeds the fd pool from the initial
// hierarchy and never grows or correctly shrinks it during fuzzing; these
// descriptors give the fd pool the same seed-grow-shrink lifecycle the
// memblk pool already has.

var openFlags = []uint64{
	uint64(unix.O_RDONLY),
	uint64(unix.O_WRONLY),
	uint64(unix.O_RDWR),
	uint64(unix.O_CREAT),
	uint64(unix.O_TRUNC),
	uint64(unix.O_APPEND),
	uint64(unix.O_EXCL),
}

var unlinkatFlags = []uint64{
	0,
	uint64(unix.AT_REMOVEDIR),
}

func init() {
	Register(&Descriptor{
		Num:     unix.SYS_CLOSE,
		Name:    "close",
		Nargs:   1,
		Groups:  GroupFD,
		Cleanup: closeCleanup,
		Args: [MaxArgs]ArgDesc{
			{Type: ArgFD, Name: "fd"},
		},
	})

	Register(&Descriptor{
		Num:     unix.SYS_OPEN,
		Name:    "open",
		Nargs:   3,
		Groups:  GroupFD,
		Cleanup: openCleanup,
		Args: [MaxArgs]ArgDesc{
			{Type: ArgPath, Name: "path"},
			{Type: ArgIflagmask, Name: "flags", Flags: openFlags},
			{Type: ArgMode, Name: "mode"},
		},
	})

	Register(&Descriptor{
		Num:     unix.SYS_OPENAT,
		Name:    "openat",
		Nargs:   4,
		Groups:  GroupFD | GroupDir,
		Cleanup: openCleanup,
		Args: [MaxArgs]ArgDesc{
			{Type: ArgFD, Name: "dirfd"},
			{Type: ArgPath, Name: "path"},
			{Type: ArgIflagmask, Name: "flags", Flags: openFlags},
			{Type: ArgMode, Name: "mode"},
		},
	})

	Register(&Descriptor{
		Num:    unix.SYS_MKDIRAT,
		Name:   "mkdirat",
		Nargs:  3,
		Groups: GroupDir,
		Args: [MaxArgs]ArgDesc{
			{Type: ArgFD, Name: "dirfd"},
			{Type: ArgPath, Name: "path"},
			{Type: ArgMode, Name: "mode"},
		},
	})

	Register(&Descriptor{
		Num:    unix.SYS_UNLINKAT,
		Name:   "unlinkat",
		Nargs:  3,
		Groups: GroupDir,
		Args: [MaxArgs]ArgDesc{
			{Type: ArgFD, Name: "dirfd"},
			{Type: ArgPath, Name: "path"},
			{Type: ArgIflagmask, Name: "flags", Flags: unlinkatFlags},
		},
	})
}

// closeCleanup evicts fd from the live pool on a successful close, keeping
// the pool in sync with reality.
func closeCleanup(pool *argpool.Pool, args *Args, ret uintptr, errno error) {
	if errno != nil {
		return
	}
	_ = pool.FdClose(int(args[0]))
}

// openCleanup admits a newly created descriptor into the live fd pool on
// success.
func openCleanup(pool *argpool.Pool, args *Args, ret uintptr, errno error) {
	if errno != nil {
		return
	}
	pool.FdAdd(int(ret))
}
