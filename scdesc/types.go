// Package scdesc implements the syscall descriptor registry: a
// process-wide, iterable set of descriptors assembled from multiple files
// via package-level init() registration (the idiomatic Go substitute for
// the source's linker SET_DECLARE/DATA_SET facility), plus name- and
// group-based filtering.
package scdesc

import (
	"os"

	"sysfuzz/argpool"
)

var exitFunc = os.Exit

// ArgType is the tag of the closed, argument-type variant (spec's scargdesc
// union keyed by enum argtype).
type ArgType int

const (
	ArgUnspec ArgType = iota
	ArgFD
	ArgPath
	ArgSocket
	ArgMemaddr
	ArgMemlen
	ArgMode
	ArgPID
	ArgProcdesc
	ArgIflagmask
	ArgLflagmask
	ArgCmd
	ArgUID
	ArgGID
	ArgKqueue
	ArgSchedParam
	ArgTimespec
)

// ArgDesc describes one argument slot of a syscall descriptor. Flags/Cmds
// carry candidate values for ArgIflagmask/ArgLflagmask/ArgCmd; all other
// types ignore them.
type ArgDesc struct {
	Type ArgType
	Name string
	// Flags holds the candidate flag values for ArgIflagmask/ArgLflagmask.
	Flags []uint64
	// Cmds holds the candidate command values for ArgCmd.
	Cmds []uint64
}

// Group is a named bitmask collecting related syscalls for filtering.
type Group uint32

const (
	GroupVM Group = 1 << iota
	GroupSched
	GroupFork
	GroupFD
	GroupDir
)

var groupNames = map[string]Group{
	"vm":    GroupVM,
	"sched": GroupSched,
	"fork":  GroupFork,
	"fd":    GroupFD,
	"dir":   GroupDir,
}

// GroupLookup resolves a group name to its bitmask.
func GroupLookup(name string) (Group, bool) {
	g, ok := groupNames[name]
	return g, ok
}

// GroupNames returns every registered group name, for -l with no argument.
func GroupNames() []string {
	names := make([]string, 0, len(groupNames))
	for name := range groupNames {
		names = append(names, name)
	}
	return names
}

const MaxArgs = 8

// Args is a fixed-size argument vector passed to the raw syscall, fixup,
// and cleanup hooks. Unused slots beyond a descriptor's Nargs are zero.
type Args [MaxArgs]uint64

// FixupFunc adjusts synthesized arguments before the syscall is invoked. May
// rewrite args in place and consult the pool (e.g. mmap's fixup substitutes
// an address/length pair drawn from the memblk pool).
type FixupFunc func(pool *argpool.Pool, args *Args)

// CleanupFunc runs after the syscall returns, feeding outcomes back into the
// pools. A fork-family cleanup is a potentially non-returning operation: it
// may terminate the process (the child branch) instead of returning, via
// ChildExit.
type CleanupFunc func(pool *argpool.Pool, args *Args, ret uintptr, errno error)

// ChildExit is called by a fork-family cleanup when it detects it is
// running in the child (ret == 0). It is a variable, not a direct os.Exit
// call, so tests can substitute a non-terminating stub.
var ChildExit = func(code int) {
	exitFunc(code)
}

// Descriptor is immutable, process-wide metadata describing one syscall and
// how to synthesize arguments for it.
type Descriptor struct {
	Num     uintptr
	Name    string
	Nargs   int
	Groups  Group
	Fixup   FixupFunc
	Cleanup CleanupFunc
	Args    [MaxArgs]ArgDesc
}
