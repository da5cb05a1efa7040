// Package synth fills a syscall descriptor's argument vector by dispatching
// on each argument's declared type, drawing memory, descriptor, flag, and
// command values from a worker's argument pool and PRNG.
package synth

import (
	"math/rand"

	"sysfuzz/argpool"
	"sysfuzz/scdesc"
)

// Fill populates args for d, zeroing unused slots beyond d.Nargs. A MEMADDR
// argument immediately followed by MEMLEN consumes both slots from the same
// sampled memblk, so the caller must not re-visit the MEMLEN slot; Fill
// handles this internally by skipping it.
func Fill(d *scdesc.Descriptor, pool *argpool.Pool, rng *rand.Rand, args *scdesc.Args) {
	*args = scdesc.Args{}

	for i := 0; i < d.Nargs; i++ {
		ad := d.Args[i]
		switch ad.Type {
		case scdesc.ArgUnspec:
			args[i] = rng.Uint64()

		case scdesc.ArgMemaddr:
			blk, err := pool.MemblkRandom()
			if err != nil {
				args[i] = 0
				continue
			}
			args[i] = uint64(blk.Addr)
			if i+1 < d.Nargs && d.Args[i+1].Type == scdesc.ArgMemlen {
				args[i+1] = blk.Len
				i++
			}

		case scdesc.ArgMemlen:
			blk, err := pool.MemblkRandom()
			if err != nil {
				args[i] = 0
				continue
			}
			args[i] = blk.Len

		case scdesc.ArgCmd:
			if len(ad.Cmds) > 0 {
				args[i] = ad.Cmds[rng.Intn(len(ad.Cmds))]
			}

		case scdesc.ArgIflagmask, scdesc.ArgLflagmask:
			args[i] = randomFlagMask(ad.Flags, rng)

		case scdesc.ArgFD:
			fd, err := fdForArg(pool, ad.Name)
			if err != nil {
				args[i] = 0
				continue
			}
			args[i] = uint64(fd)

		default:
			args[i] = 0
		}
	}
}

// fdForArg draws a live descriptor for an ArgFD slot, distinguishing a
// directory-descriptor role (the *at-family "dirfd" argument) from a plain
// file descriptor by the argument's declared name, since both share the
// same ArgType.
func fdForArg(pool *argpool.Pool, name string) (int, error) {
	if name == "dirfd" {
		return pool.DirfdRandom()
	}
	return pool.FdRandom()
}

// randomFlagMask ORs together a uniformly random count (in [0, len(flags)])
// of uniformly chosen candidates, duplicates permitted since OR is
// idempotent.
func randomFlagMask(flags []uint64, rng *rand.Rand) uint64 {
	if len(flags) == 0 {
		return 0
	}
	count := rng.Intn(len(flags) + 1)
	var mask uint64
	for i := 0; i < count; i++ {
		mask |= flags[rng.Intn(len(flags))]
	}
	return mask
}
