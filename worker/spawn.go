package worker

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	fuzzerr "sysfuzz/errors"
	"sysfuzz/utils"
)

// Environment variables carrying a worker's configuration across the
// re-exec boundary (see SPEC_FULL.md's WORKER MODEL: a Go runtime cannot
// safely raw-fork itself, so each worker is a freshly re-exec'd process
// rather than a forked copy).
const (
	EnvWorkerIndex = "SYSFUZZ_WORKER_INDEX"
	EnvBaseSeed    = "SYSFUZZ_BASE_SEED"
	EnvCallCount   = "SYSFUZZ_CALL_COUNT"
	EnvHierRoot    = "SYSFUZZ_HIER_ROOT"
	EnvSyscalls    = "SYSFUZZ_SYSCALLS"
	EnvGroups      = "SYSFUZZ_GROUPS"
	EnvOverrides   = "SYSFUZZ_OVERRIDES"
)

// overrideSep joins -x entries in EnvOverrides; name=value pairs never
// contain it, unlike ",", which a string value could legitimately carry.
const overrideSep = "\x1f"

// SpawnOptions configures the worker fleet the parent fans out.
type SpawnOptions struct {
	NumWorkers int
	BaseSeed   int64
	CallCount  uint64
	HierRoot   string
	Syscalls   []string
	Groups     []string
	Overrides  []string
}

// Spawn re-execs the running binary NumWorkers times under the hidden
// fuzz-worker subcommand, one per worker, passing each a sync pipe over
// which the worker reports successful pool/hierarchy setup (or a setup
// error) before entering its fuzz loop. Spawn waits out every worker's
// handshake before returning control to the caller via Wait, and waits for
// all of them in turn regardless of handshake outcome so none are left as
// zombies. Returns the first non-nil error encountered, from either a
// failed handshake or a non-zero exit.
func Spawn(opts SpawnOptions) error {
	self, err := os.Executable()
	if err != nil {
		return fuzzerr.Wrap(err, fuzzerr.ErrInternal, "worker.Spawn")
	}

	cmds := make([]*exec.Cmd, 0, opts.NumWorkers)
	pipes := make([]*utils.SyncPipe, 0, opts.NumWorkers)

	for idx := 1; idx <= opts.NumWorkers; idx++ {
		sp, err := utils.NewSyncPipe()
		if err != nil {
			return fuzzerr.Wrap(err, fuzzerr.ErrWorkerSpawn.Kind, "worker.Spawn")
		}

		cmd := exec.Command(self, "fuzz-worker")
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		cmd.ExtraFiles = []*os.File{sp.ChildFile()}
		cmd.Env = append(os.Environ(),
			fmt.Sprintf("%s=%d", EnvWorkerIndex, idx),
			fmt.Sprintf("%s=%d", EnvBaseSeed, opts.BaseSeed),
			fmt.Sprintf("%s=%d", EnvCallCount, opts.CallCount),
			fmt.Sprintf("%s=%s", EnvHierRoot, opts.HierRoot),
			fmt.Sprintf("%s=%s", EnvSyscalls, strings.Join(opts.Syscalls, ",")),
			fmt.Sprintf("%s=%s", EnvGroups, strings.Join(opts.Groups, ",")),
			fmt.Sprintf("%s=%s", EnvOverrides, strings.Join(opts.Overrides, overrideSep)),
		)

		if err := cmd.Start(); err != nil {
			sp.Close()
			return fuzzerr.Wrap(err, fuzzerr.ErrWorkerSpawn.Kind, "worker.Spawn")
		}
		sp.CloseChild() // the worker holds its own copy past fork/exec

		cmds = append(cmds, cmd)
		pipes = append(pipes, sp)
	}

	var firstErr error
	for _, sp := range pipes {
		if err := sp.WaitWithError(); err != nil && firstErr == nil {
			firstErr = fuzzerr.WrapWithDetail(err, fuzzerr.ErrWorkerSpawn.Kind, "worker.Spawn", "worker failed during startup")
		}
		sp.CloseParent()
	}

	for _, cmd := range cmds {
		if err := cmd.Wait(); err != nil && firstErr == nil {
			firstErr = fuzzerr.Wrap(err, fuzzerr.ErrChildExit, "worker.Spawn")
		}
	}
	return firstErr
}

// EnvConfig parses a worker's re-exec environment into a Config and its
// worker index. Called from the fuzz-worker subcommand.
func EnvConfig() (Config, int, error) {
	idx, err := strconv.Atoi(os.Getenv(EnvWorkerIndex))
	if err != nil {
		return Config{}, 0, fuzzerr.WrapWithDetail(err, fuzzerr.ErrInvalidConfig, "worker.EnvConfig", "missing or malformed "+EnvWorkerIndex)
	}
	baseSeed, err := strconv.ParseInt(os.Getenv(EnvBaseSeed), 10, 64)
	if err != nil {
		return Config{}, 0, fuzzerr.WrapWithDetail(err, fuzzerr.ErrInvalidConfig, "worker.EnvConfig", "missing or malformed "+EnvBaseSeed)
	}
	callCount, err := strconv.ParseUint(os.Getenv(EnvCallCount), 10, 64)
	if err != nil {
		return Config{}, 0, fuzzerr.WrapWithDetail(err, fuzzerr.ErrInvalidConfig, "worker.EnvConfig", "missing or malformed "+EnvCallCount)
	}

	cfg := Config{
		Seed:      baseSeed + int64(idx),
		CallCount: callCount,
		HierRoot:  os.Getenv(EnvHierRoot),
	}
	return cfg, idx, nil
}

// SplitList splits a comma-separated -c/-g style list, dropping empty
// entries (so an unset environment variable yields an empty slice rather
// than a slice with one empty string).
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// EnvSelectors reads the syscall/group whitelist and parameter overrides a
// worker was re-exec'd with. Separate from EnvConfig since the caller
// builds its own params.Registry and scdesc.Build selection from these,
// rather than Config itself.
func EnvSelectors() (syscalls, groups, overrides []string) {
	syscalls = SplitList(os.Getenv(EnvSyscalls))
	groups = SplitList(os.Getenv(EnvGroups))
	if raw := os.Getenv(EnvOverrides); raw != "" {
		overrides = strings.Split(raw, overrideSep)
	}
	return
}
