// Package errors provides predefined sentinel errors for common failure cases.
package errors

// Parameter registry errors.
var (
	// ErrUnknownParam indicates a -x name=value referenced an unregistered parameter.
	ErrUnknownParam = &FuzzError{
		Kind:   ErrInvalidConfig,
		Detail: "unknown parameter",
	}

	// ErrParamType indicates a -x value could not be coerced to the parameter's type.
	ErrParamType = &FuzzError{
		Kind:   ErrInvalidConfig,
		Detail: "parameter value has the wrong type",
	}

	// ErrParamSyntax indicates a -x argument was not in name=value form.
	ErrParamSyntax = &FuzzError{
		Kind:   ErrInvalidConfig,
		Detail: "malformed -x argument, expected name=value",
	}
)

// Syscall descriptor and group errors.
var (
	// ErrUnknownSyscall indicates a -c argument named a syscall with no registered descriptor.
	ErrUnknownSyscall = &FuzzError{
		Kind:   ErrNotFound,
		Detail: "unknown syscall",
	}

	// ErrUnknownGroup indicates a -g or -l argument named a group that is not defined.
	ErrUnknownGroup = &FuzzError{
		Kind:   ErrNotFound,
		Detail: "unknown syscall group",
	}

	// ErrNoSyscallsSelected indicates the -c/-g filters excluded every descriptor.
	ErrNoSyscallsSelected = &FuzzError{
		Kind:   ErrInvalidConfig,
		Detail: "no syscalls selected",
	}
)

// Resource manager (rman) errors.
var (
	// ErrBlkszNotPowerOfTwo indicates rman.Init was given a non-power-of-two block size.
	ErrBlkszNotPowerOfTwo = &FuzzError{
		Kind:   ErrAlignment,
		Detail: "block size must be a power of two",
	}

	// ErrRangeMisaligned indicates a range that is not block-aligned. rman.Add
	// and rman.Release round ranges to block alignment instead of returning it.
	ErrRangeMisaligned = &FuzzError{
		Kind:   ErrAlignment,
		Detail: "range is not aligned to the resource manager's block size",
	}

	// ErrRangeOverflow indicates a range's end would overflow the address space.
	ErrRangeOverflow = &FuzzError{
		Kind:   ErrAlignment,
		Detail: "range end overflows address space",
	}

	// ErrPoolEmpty indicates rman.Select was called against a resource manager with no free space.
	ErrPoolEmpty = &FuzzError{
		Kind:   ErrResource,
		Detail: "resource pool is empty",
	}

	// ErrNoFit indicates no free interval in the resource manager could satisfy the requested length.
	ErrNoFit = &FuzzError{
		Kind:   ErrResource,
		Detail: "no free interval large enough for the requested length",
	}

	// ErrNotAllocated indicates rman.Release was given a range that was not currently allocated.
	ErrNotAllocated = &FuzzError{
		Kind:   ErrResource,
		Detail: "range is not currently allocated",
	}
)

// Argument pool (argpool) and hierarchy errors.
var (
	// ErrMemblkMap indicates the memblk pool's backing mmap failed.
	ErrMemblkMap = &FuzzError{
		Kind:   ErrResource,
		Detail: "failed to map memblk backing region",
	}

	// ErrHierarchyCreate indicates a directory or file in the fuzzing hierarchy could not be created.
	ErrHierarchyCreate = &FuzzError{
		Kind:   ErrFilesystem,
		Detail: "failed to create hierarchy entry",
	}

	// ErrHierarchyRoot indicates the configured hierarchy root is unusable (not a directory, unwritable).
	ErrHierarchyRoot = &FuzzError{
		Kind:   ErrFilesystem,
		Detail: "invalid hierarchy root",
	}

	// ErrPathEscape indicates a generated hierarchy path escaped the configured root.
	ErrPathEscape = &FuzzError{
		Kind:   ErrFilesystem,
		Detail: "generated path escapes hierarchy root",
	}
)

// Entropy errors.
var (
	// ErrEntropyShortRead indicates fewer bytes than requested were read from the entropy source.
	ErrEntropyShortRead = &FuzzError{
		Kind:   ErrEntropy,
		Detail: "short read from entropy source",
	}
)

// Worker and child-process errors.
var (
	// ErrWorkerSpawn indicates re-exec of a worker subprocess failed.
	ErrWorkerSpawn = &FuzzError{
		Kind:   ErrInternal,
		Detail: "failed to spawn worker",
	}

	// ErrChildSignaled indicates a fork-family child was terminated by a signal rather than exiting.
	ErrChildSignaled = &FuzzError{
		Kind:   ErrChildExit,
		Detail: "child terminated by signal",
	}

	// ErrChildNonZeroExit indicates a fork-family child exited with a non-zero status.
	ErrChildNonZeroExit = &FuzzError{
		Kind:   ErrChildExit,
		Detail: "child exited with non-zero status",
	}
)

// Privilege-drop errors.
var (
	// ErrPrivDrop indicates setuid/setgid/setgroups failed while dropping privileges.
	ErrPrivDrop = &FuzzError{
		Kind:   ErrInternal,
		Detail: "failed to drop privileges",
	}

	// ErrUnknownUser indicates the target unprivileged user/group could not be resolved.
	ErrUnknownUser = &FuzzError{
		Kind:   ErrInvalidConfig,
		Detail: "unknown target user",
	}
)
