package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"sysfuzz/argpool"
	"sysfuzz/logging"
	"sysfuzz/params"
	"sysfuzz/scdesc"
	"sysfuzz/utils"
	"sysfuzz/worker"
)

// readyFD is the file descriptor Spawn's sync pipe arrives on: fd 0-2 are
// stdin/stdout/stderr, so the first entry in exec.Cmd.ExtraFiles lands at 3.
const readyFD = 3

// workerCmd is the re-exec target Spawn invokes once per worker. It is
// hidden from help output, mirroring the teacher's own hidden init/exec-init
// commands that exist purely as re-exec entry points.
var workerCmd = &cobra.Command{
	Use:    "fuzz-worker",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE:   runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg, idx, err := worker.EnvConfig()
	if err != nil {
		return err
	}

	syscalls, groups, overrides := worker.EnvSelectors()

	ncpu := uint64(runtime.NumCPU())
	pageCount, err := systemPageCount()
	if err != nil {
		return err
	}
	registry := params.NewRegistry(cfg.HierRoot, pageCount, ncpu)
	for _, ov := range overrides {
		if err := registry.ParseOverride(ov); err != nil {
			return err
		}
	}

	cfg.PageBudget = registry.MustNumber("memblk-page-count")
	cfg.MaxBlkPages = registry.MustNumber("memblk-max-size")
	cfg.Hierarchy = argpool.HierarchyParams{
		Depth:            registry.MustNumber("hier-depth"),
		MaxFileSize:      registry.MustNumber("hier-max-fsize"),
		MaxFilesPerDir:   registry.MustNumber("hier-max-files-per-dir"),
		MaxSubdirsPerDir: registry.MustNumber("hier-max-subdirs-per-dir"),
	}

	descriptors, err := scdesc.Build(syscalls, groups)
	if err != nil {
		return err
	}
	cfg.Descriptors = descriptors

	// One "seeding with N" line per worker, each with its own derived seed
	// (base_seed + idx), satisfying the CLI's stdout contract: N workers
	// spawned means N such lines, not one from the parent.
	fmt.Printf("seeding with %d\n", cfg.Seed)

	logger := logging.WithWorker(logging.Default(), idx)
	return worker.Run(cfg, logger, utils.ChildEnd(readyFD))
}
