// Package argpool holds the live resources available as syscall arguments:
// a pool of mapped memory blocks, file- and directory-descriptor pools, and
// the on-disk file hierarchy those descriptors are seeded from.
package argpool

import (
	"math/rand"
	"unsafe"

	"golang.org/x/sys/unix"

	fuzzerr "sysfuzz/errors"
	"sysfuzz/rman"
)

// Memblk designates a virtual-memory region known to the fuzzer's own
// process to be validly mapped.
type Memblk struct {
	Addr uintptr
	Len  uint64
}

// Pool owns the memblk, fd, and dirfd resource managers for one worker.
type Pool struct {
	Memblks *rman.Rman
	Fds     *rman.Rman
	Dirfds  *rman.Rman

	rng *rand.Rand
}

// New constructs an empty Pool. Memblks seeds itself via SeedMemblks;
// Fds/Dirfds are seeded by the hierarchy builder (see hierarchy.go).
func New(rng *rand.Rand) (*Pool, error) {
	memblks, err := rman.Init(uint64(unix.Getpagesize()), nil)
	if err != nil {
		return nil, err
	}
	fds, err := rman.Init(1, nil)
	if err != nil {
		return nil, err
	}
	dirfds, err := rman.Init(1, nil)
	if err != nil {
		return nil, err
	}
	return &Pool{Memblks: memblks, Fds: fds, Dirfds: dirfds, rng: rng}, nil
}

// SeedMemblks repeatedly mmaps anonymous regions until pageBudget pages have
// been mapped, each sized uniformly in [1, maxBlockPages] pages and clamped
// to the remaining budget, with 50%
// probability zero-filled. Mirrors memblk_init's randomized sizing.
func (p *Pool) SeedMemblks(pageBudget, maxBlockPages uint64) error {
	pagesize := uint64(unix.Getpagesize())

	for pageBudget > 0 {
		n := uint64(p.rng.Int63n(int64(maxBlockPages))) + 1
		if n > pageBudget {
			n = pageBudget
		}
		pageBudget -= n

		length := int(n * pagesize)
		addr, err := unix.Mmap(-1, 0, length, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC, unix.MAP_ANON|unix.MAP_PRIVATE)
		if err != nil {
			return fuzzerr.Wrap(err, fuzzerr.ErrResource, "argpool.SeedMemblks")
		}
		if p.rng.Intn(2) == 0 {
			for i := range addr {
				addr[i] = 0
			}
		}

		start := uintptr(addrOf(addr))
		p.Memblks.Add(uint64(start), uint64(length))
	}
	return nil
}

// MemblkRandom samples a sub-region of a randomly chosen mapped memblk: a
// uniformly random block-aligned offset within it, and a uniformly random
// length from the remainder.
func (p *Pool) MemblkRandom() (Memblk, error) {
	start, length, err := p.Memblks.Select(0, p.rng)
	if err != nil {
		return Memblk{}, err
	}
	return Memblk{Addr: uintptr(start), Len: length}, nil
}

// MemblkMap records a newly mapped region (e.g. from a successful mmap
// syscall under test) as available.
func (p *Pool) MemblkMap(addr uintptr, length uint64) {
	p.Memblks.Add(uint64(addr), length)
}

// MemblkUnmap releases a previously mapped region (e.g. after a successful
// munmap syscall under test).
func (p *Pool) MemblkUnmap(addr uintptr, length uint64) error {
	return p.Memblks.Release(uint64(addr), length)
}

// FdRandom returns a randomly selected live file descriptor.
func (p *Pool) FdRandom() (int, error) {
	return selectSingleUnit(p.Fds, p.rng)
}

// DirfdRandom returns a randomly selected live directory descriptor.
func (p *Pool) DirfdRandom() (int, error) {
	return selectSingleUnit(p.Dirfds, p.rng)
}

func selectSingleUnit(rm *rman.Rman, rng *rand.Rand) (int, error) {
	start, _, err := rm.Select(1, rng)
	if err != nil {
		return 0, err
	}
	return int(start), nil
}

// FdAdd admits fd into the live descriptor pool.
func (p *Pool) FdAdd(fd int) {
	p.Fds.Add(uint64(fd), 1)
}

// FdClose evicts fd from the live descriptor pool. Unlike the source's
// no-op ap_fd_close, this keeps the pool in sync with reality so a later
// fd_random never returns a descriptor the fuzzer itself has closed.
func (p *Pool) FdClose(fd int) error {
	return p.Fds.Release(uint64(fd), 1)
}

// DirfdAdd admits a directory descriptor into the live pool.
func (p *Pool) DirfdAdd(fd int) {
	p.Dirfds.Add(uint64(fd), 1)
}

// DirfdClose evicts a directory descriptor from the live pool.
func (p *Pool) DirfdClose(fd int) error {
	return p.Dirfds.Release(uint64(fd), 1)
}

func addrOf(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}
