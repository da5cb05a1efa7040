// Package rman implements a coalesced interval-set resource manager.
//
// An Rman tracks disjoint, non-adjacent ranges of a block-aligned u_long
// dimension — virtual address space backing a memory-block pool, or a flat
// integer space backing a file-descriptor pool. It supports adding a range
// (coalescing with neighbors), releasing a sub-range of an existing one, and
// sampling a uniformly random sub-range for use as a syscall argument.
package rman

import (
	"container/list"
	"math"
	"math/rand"
	"sync"

	fuzzerr "sysfuzz/errors"
)

// Resource is a single interval [Start, Start+Len).
type Resource struct {
	Start uint64
	Len   uint64
}

func (r *Resource) end() uint64 {
	return r.Start + r.Len
}

// InitFunc seeds a freshly initialized Rman, e.g. by issuing anonymous
// mappings and calling Add for each. Its error, if any, propagates from Init.
type InitFunc func(*Rman) error

// Rman is a coalesced, ordered set of disjoint, non-adjacent resource
// intervals, parameterized by a block size. All exported methods are safe
// for concurrent use, though in practice each worker process owns its own
// Rman and never shares it.
type Rman struct {
	mu      sync.Mutex
	res     *list.List // of *Resource, ordered by Start
	blksz   uint64
	entries int
}

// Init prepares rm with the given block size, which must be a power of two.
// If initcb is non-nil it is invoked to seed the pool; its error propagates.
func Init(blksz uint64, initcb InitFunc) (*Rman, error) {
	if blksz == 0 || blksz&(blksz-1) != 0 {
		return nil, fuzzerr.ErrBlkszNotPowerOfTwo
	}
	rm := &Rman{
		res:   list.New(),
		blksz: blksz,
	}
	if initcb != nil {
		if err := initcb(rm); err != nil {
			return nil, err
		}
	}
	return rm, nil
}

// Blksz returns the manager's block size.
func (rm *Rman) Blksz() uint64 {
	return rm.blksz
}

// Entries returns the current number of disjoint intervals.
func (rm *Rman) Entries() int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.entries
}

func roundup2(x, y uint64) uint64 {
	return (x + y - 1) &^ (y - 1)
}

// adjust rounds start down and len up to blksz alignment, covering the
// original [start, start+len) range.
func (rm *Rman) adjust(start, length uint64) (uint64, uint64) {
	mask := rm.blksz - 1
	length += start - (start &^ mask)
	start = start &^ mask
	length = roundup2(length, rm.blksz)
	return start, length
}

// Add inserts the range [start, start+len) into the set, coalescing with any
// overlapping or touching existing intervals. The range is first adjusted to
// block alignment. start+len must not overflow; zero-length adds are no-ops.
func (rm *Rman) Add(start, length uint64) {
	if length == 0 {
		return
	}
	if math.MaxUint64-start < length {
		return
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	start, length = rm.adjust(start, length)
	if length == 0 {
		return
	}

	for e := rm.res.Front(); e != nil; e = e.Next() {
		res := e.Value.(*Resource)
		if start > res.end() {
			continue
		}

		if start+length < res.Start {
			// Insert a fresh interval before this one.
			nres := &Resource{Start: start, Len: length}
			rm.res.InsertBefore(nres, e)
			rm.entries++
			return
		}

		// Overlaps or touches res; merge into it.
		newStart := min64(start, res.Start)
		if start <= res.Start {
			res.Len += res.Start - start
		} else {
			length += start - res.Start
		}
		res.Start = newStart
		if length > res.Len {
			res.Len = length
		}

		// Absorb any subsequent intervals this merge now touches.
		next := e.Next()
		for next != nil {
			nres := next.Value.(*Resource)
			if nres.Start > res.end() {
				break
			}
			merged := nres.Start + nres.Len - res.Start
			if merged > res.Len {
				res.Len = merged
			}
			toRemove := next
			next = next.Next()
			rm.res.Remove(toRemove)
			rm.entries--
		}
		return
	}

	// Belongs at the tail.
	rm.res.PushBack(&Resource{Start: start, Len: length})
	rm.entries++
}

// Select returns a uniformly random sub-range from the set without removing
// it: an interval is chosen uniformly by index, then a block-aligned offset
// within it, then a length in [1, remaining blocks] capped at maxblks blocks
// (if maxblks > 0). Returns ErrPoolEmpty if the manager holds no intervals.
func (rm *Rman) Select(maxblks uint64, rng *rand.Rand) (start, length uint64, err error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.entries == 0 {
		return 0, 0, fuzzerr.ErrPoolEmpty
	}

	interval := rng.Intn(rm.entries)
	var res *Resource
	for e := rm.res.Front(); e != nil; e = e.Next() {
		if interval > 0 {
			interval--
			continue
		}
		res = e.Value.(*Resource)
		break
	}

	blks := res.Len / rm.blksz
	start = uint64(rng.Int63n(int64(blks)))*rm.blksz + res.Start
	blks -= (start - res.Start) / rm.blksz
	if maxblks > 0 && blks > maxblks {
		blks = maxblks
	}
	length = (uint64(rng.Int63n(int64(blks))) + 1) * rm.blksz
	return start, length, nil
}

// Release removes the range [start, start+len), which must lie wholly within
// a single existing interval after alignment adjustment. Depending on where
// the range falls, the containing interval is trimmed on one side, split in
// two, or removed entirely if it becomes empty.
func (rm *Rman) Release(start, length uint64) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	start, length = rm.adjust(start, length)

	for e := rm.res.Front(); e != nil; e = e.Next() {
		res := e.Value.(*Resource)
		if start < res.Start {
			continue
		}
		if start > res.end() {
			continue
		}
		if length > res.Len {
			return fuzzerr.ErrNotAllocated
		}
		if start+length > res.end() {
			return fuzzerr.ErrNotAllocated
		}

		switch {
		case start == res.Start || start+length == res.end():
			if start == res.Start {
				res.Start = start + length
			}
			res.Len -= length
			if res.Len == 0 {
				rm.res.Remove(e)
				rm.entries--
			}
		default:
			nres := &Resource{
				Start: start + length,
				Len:   res.Len - length - (start - res.Start),
			}
			rm.res.InsertAfter(nres, e)
			rm.entries++
			res.Len = start - res.Start
		}
		return nil
	}

	return fuzzerr.ErrNotAllocated
}

// Snapshot returns a copy of the current interval set, ordered by start.
// Intended for tests and diagnostics, not the hot path.
func (rm *Rman) Snapshot() []Resource {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	out := make([]Resource, 0, rm.entries)
	for e := rm.res.Front(); e != nil; e = e.Next() {
		out = append(out, *e.Value.(*Resource))
	}
	return out
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
