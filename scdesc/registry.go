package scdesc

import (
	"strings"
	"sync"

	fuzzerr "sysfuzz/errors"
)

var (
	registryMu sync.Mutex
	registry   []*Descriptor
)

// Register adds d to the process-wide descriptor set. Called from each
// group file's init(), mirroring the teacher's own per-file init()
// registration of cobra subcommands and flags.
func Register(d *Descriptor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = append(registry, d)
}

// All returns every registered descriptor, in registration order.
func All() []*Descriptor {
	registryMu.Lock()
	defer registryMu.Unlock()
	out := make([]*Descriptor, len(registry))
	copy(out, registry)
	return out
}

// Lookup finds a registered descriptor by name.
func Lookup(name string) (*Descriptor, bool) {
	for _, d := range All() {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// Build filters the registry per the names in sclist and the group names in
// scgrplist: a descriptor is included iff its name matches any entry in
// sclist OR its group mask intersects the union of the named groups. When
// both lists are empty, every descriptor is included. Unknown names in
// either list abort with an error.
func Build(sclist, scgrplist []string) ([]*Descriptor, error) {
	if len(sclist) == 0 && len(scgrplist) == 0 {
		return All(), nil
	}

	names := make(map[string]bool, len(sclist))
	for _, n := range sclist {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := Lookup(n); !ok {
			return nil, fuzzerr.ErrUnknownSyscall
		}
		names[n] = true
	}

	var groupMask Group
	for _, g := range scgrplist {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		mask, ok := GroupLookup(g)
		if !ok {
			return nil, fuzzerr.ErrUnknownGroup
		}
		groupMask |= mask
	}

	var out []*Descriptor
	for _, d := range All() {
		if names[d.Name] || (groupMask != 0 && d.Groups&groupMask != 0) {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return nil, fuzzerr.ErrNoSyscallsSelected
	}
	return out, nil
}
