// Package worker implements the per-worker fuzz loop and the parent's
// worker fan-out: spawning, seeding, and reaping.
package worker

import (
	"log/slog"
	"math/rand"

	"golang.org/x/sys/unix"

	"sysfuzz/argpool"
	"sysfuzz/logging"
	"sysfuzz/scdesc"
	"sysfuzz/synth"
	"sysfuzz/utils"
)

// Config bounds one worker's run.
type Config struct {
	Seed        int64
	CallCount   uint64 // 0 = infinite
	HierRoot    string
	PageBudget  uint64
	MaxBlkPages uint64
	Hierarchy   argpool.HierarchyParams
	Descriptors []*scdesc.Descriptor
}

// Run builds a private pool and PRNG from cfg and drives the
// pick-synthesize-fixup-call-cleanup cycle until the call budget (if any)
// is exhausted. It never returns to its caller if a fork-family syscall
// under test puts it on the child branch — scdesc.ChildExit terminates the
// process from within forkCleanup instead.
//
// ready, if non-nil, is signaled once pool and hierarchy setup succeed (or
// fed the setup error and left for Spawn to report), letting the parent
// distinguish a worker that is fuzzing from one still seeding or dead on
// startup. Tests pass nil.
func Run(cfg Config, logger *slog.Logger, ready *utils.SyncPipe) error {
	rng := rand.New(rand.NewSource(cfg.Seed))

	pool, err := argpool.New(rng)
	if err != nil {
		signalSetupFailure(ready, err)
		return err
	}
	if err := pool.SeedMemblks(cfg.PageBudget, cfg.MaxBlkPages); err != nil {
		signalSetupFailure(ready, err)
		return err
	}
	if err := pool.BuildHierarchy(cfg.HierRoot, cfg.Hierarchy); err != nil {
		signalSetupFailure(ready, err)
		return err
	}

	if ready != nil {
		_ = ready.Signal()
	}

	if len(cfg.Descriptors) == 0 {
		return nil
	}

	var args scdesc.Args
	var i uint64
	for cfg.CallCount == 0 || i < cfg.CallCount {
		d := cfg.Descriptors[rng.Intn(len(cfg.Descriptors))]

		synth.Fill(d, pool, rng, &args)

		if d.Fixup != nil {
			d.Fixup(pool, &args)
		}

		ret, errno := rawSyscall(d.Num, &args)

		if d.Cleanup != nil {
			d.Cleanup(pool, &args, ret, errno)
		}

		if logger != nil {
			logging.WithSyscall(logger, d.Name).Debug("call complete", slog.Uint64("ret", uint64(ret)))
		}

		i++
	}
	return nil
}

func signalSetupFailure(ready *utils.SyncPipe, err error) {
	if ready != nil {
		_ = ready.SignalError(err)
	}
}

// rawSyscall invokes the syscall numbered num with args[0..5]; every
// registered descriptor uses at most 6 argument slots, the limit of a raw
// register-passed syscall on every architecture this fuzzer targets.
func rawSyscall(num uintptr, args *scdesc.Args) (uintptr, error) {
	ret, _, errno := unix.Syscall6(num, uintptr(args[0]), uintptr(args[1]), uintptr(args[2]), uintptr(args[3]), uintptr(args[4]), uintptr(args[5]))
	if errno != 0 {
		return ret, errno
	}
	return ret, nil
}
