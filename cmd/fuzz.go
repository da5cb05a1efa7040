package cmd

import (
	"os"
	"runtime"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	fuzzerr "sysfuzz/errors"
	"sysfuzz/logging"
	"sysfuzz/params"
	"sysfuzz/privdrop"
	"sysfuzz/scdesc"
	"sysfuzz/utils"
	"sysfuzz/worker"
)

// Flags mapped one-to-one onto spec's external interface: -n/-p/-c/-g/-s/-x,
// plus -d/-l (dump.go, list.go) which share the same flag set.
var (
	fuzzCount      uint64
	fuzzPrivileged bool
	fuzzSyscalls   []string
	fuzzGroups     []string
	fuzzSeed       int64
	fuzzSeedSet    bool
	fuzzOverrides  []string
)

func registerFuzzFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64VarP(&fuzzCount, "count", "n", 0, "bounded call count per worker (0 = infinite)")
	cmd.Flags().BoolVarP(&fuzzPrivileged, "privileged", "p", false, "retain root privileges instead of dropping to an unprivileged user")
	cmd.Flags().StringSliceVarP(&fuzzSyscalls, "syscalls", "c", nil, "comma-separated syscall name whitelist")
	cmd.Flags().StringSliceVarP(&fuzzGroups, "groups", "g", nil, "comma-separated syscall group whitelist")
	cmd.Flags().Int64VarP(&fuzzSeed, "seed", "s", 0, "explicit PRNG seed (default: read from the entropy device)")
	cmd.Flags().StringArrayVarP(&fuzzOverrides, "set", "x", nil, "parameter override name=value (repeatable)")
}

// runFuzz is the root command's default action: build the parameter
// registry and descriptor table, drop privileges, derive a seed, and fan
// out the worker pool.
func runFuzz(cmd *cobra.Command, args []string) error {
	if handled, err := maybeDumpParams(); handled {
		return err
	}
	if handled, err := maybeListGroup(cmd.Flags()); handled {
		return err
	}

	fuzzSeedSet = cmd.Flags().Changed("seed")

	hierRoot, err := os.MkdirTemp("", "sysfuzz.*")
	if err != nil {
		return fuzzerr.Wrap(err, fuzzerr.ErrFilesystem, "cmd.runFuzz")
	}

	ncpu := uint64(runtime.NumCPU())
	pageCount, err := systemPageCount()
	if err != nil {
		return err
	}
	registry := params.NewRegistry(hierRoot, pageCount, ncpu)

	for _, ov := range fuzzOverrides {
		if err := registry.ParseOverride(ov); err != nil {
			return err
		}
	}

	if err := privdrop.Drop(fuzzPrivileged, ""); err != nil {
		return err
	}

	// Validate the whitelist now so a typo in -c/-g fails fast, before any
	// worker is spawned; each worker re-resolves the same selection itself.
	if _, err := scdesc.Build(fuzzSyscalls, fuzzGroups); err != nil {
		return err
	}

	seed := fuzzSeed
	if !fuzzSeedSet {
		seed, err = utils.ReadSeed()
		if err != nil {
			return err
		}
	}

	numWorkers := int(registry.MustNumber("num-fuzzers"))
	logging.Default().Info("seeding worker pool", "num_workers", numWorkers, "seed", seed)

	return worker.Spawn(worker.SpawnOptions{
		NumWorkers: numWorkers,
		BaseSeed:   seed,
		CallCount:  fuzzCount,
		HierRoot:   registry.MustString("hier-root"),
		Syscalls:   fuzzSyscalls,
		Groups:     fuzzGroups,
		Overrides:  fuzzOverrides,
	})
}

// systemPageCount returns the host's total RAM expressed in pages, the
// total page budget params.NewRegistry divides by ncpu*4 to get
// memblk-page-count, matching the source's sysctlbyname("vm.stats.vm.v_page_count")
// default.
func systemPageCount() (uint64, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, fuzzerr.Wrap(err, fuzzerr.ErrInternal, "cmd.systemPageCount")
	}
	totalBytes := uint64(info.Totalram) * uint64(info.Unit)
	return totalBytes / uint64(unix.Getpagesize()), nil
}

// isOutputTerminal reports whether f is a TTY, used by -l (via colorize in
// list.go) to decide whether to emit color. -d prints its output plain.
func isOutputTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
