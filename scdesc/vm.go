package scdesc

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"sysfuzz/argpool"
)

var mmapProtFlags = []uint64{
	uint64(unix.PROT_NONE),
	uint64(unix.PROT_READ),
	uint64(unix.PROT_WRITE),
	uint64(unix.PROT_EXEC),
}

var mmapFlags = []uint64{
	uint64(unix.MAP_ANON),
	uint64(unix.MAP_FIXED),
	uint64(unix.MAP_NORESERVE),
	uint64(unix.MAP_PRIVATE),
	uint64(unix.MAP_SHARED),
	uint64(unix.MAP_STACK),
}

var madviseCmds = []uint64{
	uint64(unix.MADV_NORMAL),
	uint64(unix.MADV_RANDOM),
	uint64(unix.MADV_SEQUENTIAL),
	uint64(unix.MADV_WILLNEED),
	uint64(unix.MADV_DONTNEED),
	uint64(unix.MADV_FREE),
}

var msyncCmds = []uint64{
	uint64(unix.MS_ASYNC),
	uint64(unix.MS_SYNC),
	uint64(unix.MS_INVALIDATE),
}

var mlockallFlags = []uint64{
	uint64(unix.MCL_CURRENT),
	uint64(unix.MCL_FUTURE),
}

var mremapFlags = []uint64{
	uint64(unix.MREMAP_MAYMOVE),
	uint64(unix.MREMAP_FIXED),
}

func init() {
	Register(&Descriptor{
		Num:     unix.SYS_MMAP,
		Name:    "mmap",
		Nargs:   6,
		Groups:  GroupVM,
		Fixup:   mmapFixup,
		Cleanup: mmapCleanup,
		Args: [MaxArgs]ArgDesc{
			{Type: ArgUnspec, Name: "addr"},
			{Type: ArgUnspec, Name: "len"},
			{Type: ArgIflagmask, Name: "prot", Flags: mmapProtFlags},
			{Type: ArgIflagmask, Name: "flags", Flags: mmapFlags},
			{Type: ArgFD, Name: "fd"},
			{Type: ArgUnspec, Name: "offset"},
		},
	})

	Register(&Descriptor{
		Num:    unix.SYS_MADVISE,
		Name:   "madvise",
		Nargs:  3,
		Groups: GroupVM,
		Args: [MaxArgs]ArgDesc{
			{Type: ArgMemaddr, Name: "addr"},
			{Type: ArgMemlen, Name: "len"},
			{Type: ArgCmd, Name: "behav", Cmds: madviseCmds},
		},
	})

	Register(&Descriptor{
		Num:     unix.SYS_MINCORE,
		Name:    "mincore",
		Nargs:   3,
		Groups:  GroupVM,
		Fixup:   mincoreFixup,
		Cleanup: mincoreCleanup,
		Args: [MaxArgs]ArgDesc{
			{Type: ArgMemaddr, Name: "addr"},
			{Type: ArgMemlen, Name: "len"},
			{Type: ArgUnspec, Name: "vec"},
		},
	})

	// mremap stands in for the source's minherit, which Linux has no
	// equivalent syscall for; mremap exercises the same
	// address/length-pair-plus-flags shape against the memblk pool.
	Register(&Descriptor{
		Num:    unix.SYS_MREMAP,
		Name:   "mremap",
		Nargs:  4,
		Groups: GroupVM,
		Args: [MaxArgs]ArgDesc{
			{Type: ArgMemaddr, Name: "old_addr"},
			{Type: ArgMemlen, Name: "old_len"},
			{Type: ArgUnspec, Name: "new_len"},
			{Type: ArgIflagmask, Name: "flags", Flags: mremapFlags},
		},
	})

	Register(&Descriptor{
		Num:    unix.SYS_MLOCK,
		Name:   "mlock",
		Nargs:  2,
		Groups: GroupVM,
		Args: [MaxArgs]ArgDesc{
			{Type: ArgMemaddr, Name: "addr"},
			{Type: ArgMemlen, Name: "len"},
		},
	})

	Register(&Descriptor{
		Num:    unix.SYS_MPROTECT,
		Name:   "mprotect",
		Nargs:  3,
		Groups: GroupVM,
		Args: [MaxArgs]ArgDesc{
			{Type: ArgMemaddr, Name: "addr"},
			{Type: ArgMemlen, Name: "len"},
			{Type: ArgIflagmask, Name: "prot", Flags: mmapProtFlags},
		},
	})

	Register(&Descriptor{
		Num:    unix.SYS_MSYNC,
		Name:   "msync",
		Nargs:  3,
		Groups: GroupVM,
		Args: [MaxArgs]ArgDesc{
			{Type: ArgMemaddr, Name: "addr"},
			{Type: ArgMemlen, Name: "len"},
			{Type: ArgCmd, Name: "flags", Cmds: msyncCmds},
		},
	})

	Register(&Descriptor{
		Num:    unix.SYS_MUNLOCK,
		Name:   "munlock",
		Nargs:  2,
		Groups: GroupVM,
		Args: [MaxArgs]ArgDesc{
			{Type: ArgMemaddr, Name: "addr"},
			{Type: ArgMemlen, Name: "len"},
		},
	})

	Register(&Descriptor{
		Num:     unix.SYS_MUNMAP,
		Name:    "munmap",
		Nargs:   2,
		Groups:  GroupVM,
		Cleanup: munmapCleanup,
		Args: [MaxArgs]ArgDesc{
			{Type: ArgMemaddr, Name: "addr"},
			{Type: ArgMemlen, Name: "len"},
		},
	})

	Register(&Descriptor{
		Num:    unix.SYS_MLOCKALL,
		Name:   "mlockall",
		Nargs:  1,
		Groups: GroupVM,
		Args: [MaxArgs]ArgDesc{
			{Type: ArgIflagmask, Name: "flags", Flags: mlockallFlags},
		},
	})

	Register(&Descriptor{
		Num:    unix.SYS_MUNLOCKALL,
		Name:   "munlockall",
		Nargs:  0,
		Groups: GroupVM,
	})
}

// mmapFixup draws a candidate address/length pair from an already-mapped
// memblk (so MAP_FIXED attempts still land inside owned space) and coerces
// flags toward an anonymous mapping, mirroring the source's mmap_fixup.
func mmapFixup(pool *argpool.Pool, args *Args) {
	blk, err := pool.MemblkRandom()
	if err != nil {
		return
	}
	args[0] = uint64(blk.Addr)
	args[1] = blk.Len
	args[3] &^= uint64(unix.MAP_STACK)
	args[3] |= uint64(unix.MAP_ANON)
	args[4] = ^uint64(0) // fd = -1
	args[5] = 0
}

// mmapCleanup admits a successful mapping into the memblk pool; an
// off-target fixed-address result is unmapped to avoid a leak.
func mmapCleanup(pool *argpool.Pool, args *Args, ret uintptr, errno error) {
	if errno != nil {
		return
	}
	if ret != uintptr(args[0]) {
		unix.Munmap(byteSliceAt(ret, args[1]))
		return
	}
	pool.MemblkMap(ret, args[1])
}

func mincoreFixup(pool *argpool.Pool, args *Args) {
	pagesize := uint64(unix.Getpagesize())
	vecLen := (args[1] + pagesize - 1) / pagesize
	if vecLen == 0 {
		vecLen = 1
	}
	vec := make([]byte, vecLen)
	args[2] = uint64(addrOf(vec))
}

// addrOf returns the address of b's backing array, for passing a
// Go-allocated buffer to a raw syscall as a pointer argument.
func addrOf(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}

// byteSliceAt views length bytes at addr as a slice, for handing an
// already-mapped foreign region to unix.Munmap.
func byteSliceAt(addr uintptr, length uint64) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(length))
}

func mincoreCleanup(pool *argpool.Pool, args *Args, ret uintptr, errno error) {
	// The result vector is owned by the Go garbage collector; nothing to
	// free explicitly.
}

// munmapCleanup releases a successfully unmapped region from the memblk
// pool.
func munmapCleanup(pool *argpool.Pool, args *Args, ret uintptr, errno error) {
	if errno != nil {
		return
	}
	_ = pool.MemblkUnmap(uintptr(args[0]), args[1])
}
