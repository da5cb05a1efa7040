// Package params implements the fuzzer's typed, name-keyed parameter
// registry: a small dynamically-typed dictionary (bool | uint64 | string)
// with defaults, overridable via repeated "-x name=value" flags.
package params

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	fuzzerr "sysfuzz/errors"
)

// Kind identifies the dynamic type stored for a parameter.
type Kind int

const (
	KindBool Kind = iota
	KindNumber
	KindString
)

type value struct {
	kind   Kind
	b      bool
	num    uint64
	str    string
	descr  string
}

// Registry is a typed, name-keyed parameter dictionary.
type Registry struct {
	mu     sync.RWMutex
	values map[string]*value
	order  []string
}

// NewRegistry returns a registry pre-populated with sysfuzz's recognized
// parameters and their defaults. hierRoot becomes the default value of
// "hier-root" (normally a temp directory created by the caller via
// os.MkdirTemp, mirroring the original mkdtemp("/tmp/sysfuzz.XXXXXX")).
func NewRegistry(hierRoot string, pageCount, ncpu uint64) *Registry {
	r := &Registry{values: make(map[string]*value)}

	r.define("hier-depth", "Maximum file hierarchy depth.", 4)
	r.define("hier-max-fsize", "Maximum file size for random file creation.", 1024*1024)
	r.define("hier-max-files-per-dir", "Maximum number of random files per directory.", 10)
	r.define("hier-max-subdirs-per-dir", "Maximum number of subdirectories per directory.", 7)
	r.defineString("hier-root", "The root directory for a random file hierarchy.", hierRoot)
	r.define("memblk-page-count", "The total number of pages to map in memblks.", pageCount/(ncpu*4))
	r.define("memblk-max-size", "The maximum number of pages in a memblk.", 1024)
	r.define("num-fuzzers", "The number of fuzzer processes to run.", ncpu)

	return r
}

func (r *Registry) define(name, descr string, num uint64) {
	r.values[name] = &value{kind: KindNumber, num: num, descr: descr}
	r.order = append(r.order, name)
}

func (r *Registry) defineString(name, descr, s string) {
	r.values[name] = &value{kind: KindString, str: s, descr: descr}
	r.order = append(r.order, name)
}

// Set applies a single "name=value" override, coercing val to the
// parameter's existing kind. Booleans are case-insensitive true/false;
// numbers accept decimal or 0x-prefixed hex.
func (r *Registry) Set(name, val string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.values[name]
	if !ok {
		return fuzzerr.ErrUnknownParam
	}

	switch v.kind {
	case KindBool:
		switch strings.ToLower(val) {
		case "true":
			v.b = true
		case "false":
			v.b = false
		default:
			return fuzzerr.ErrParamType
		}
	case KindNumber:
		base := 10
		if strings.HasPrefix(val, "0x") || strings.HasPrefix(val, "0X") {
			base = 16
			val = val[2:]
		}
		num, err := strconv.ParseUint(val, base, 64)
		if err != nil {
			return fuzzerr.ErrParamType
		}
		v.num = num
	case KindString:
		v.str = val
	}
	return nil
}

// ParseOverride splits a "name=value" argument (as produced by -x) and
// applies it. Arguments without an '=' are rejected.
func (r *Registry) ParseOverride(arg string) error {
	name, val, ok := strings.Cut(arg, "=")
	if !ok {
		return fuzzerr.ErrParamSyntax
	}
	return r.Set(name, val)
}

// Bool returns the value of a boolean parameter. This fixes the source
// implementation's bug where the boolean accessor returned the raw nvlist
// string instead of a coerced bool.
func (r *Registry) Bool(name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[name]
	if !ok || v.kind != KindBool {
		return false, fuzzerr.ErrUnknownParam
	}
	return v.b, nil
}

// Number returns the value of a numeric parameter.
func (r *Registry) Number(name string) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[name]
	if !ok || v.kind != KindNumber {
		return 0, fuzzerr.ErrUnknownParam
	}
	return v.num, nil
}

// String returns the value of a string parameter.
func (r *Registry) String(name string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[name]
	if !ok || v.kind != KindString {
		return "", fuzzerr.ErrUnknownParam
	}
	return v.str, nil
}

// MustNumber returns the value of a numeric parameter, panicking if the
// name is unknown or not numeric. Intended for call sites that supply only
// registry-defined names and cannot fail at runtime.
func (r *Registry) MustNumber(name string) uint64 {
	n, err := r.Number(name)
	if err != nil {
		panic(err)
	}
	return n
}

// MustString is the string analogue of MustNumber.
func (r *Registry) MustString(name string) string {
	s, err := r.String(name)
	if err != nil {
		panic(err)
	}
	return s
}

// Dump writes "name: value\ndescription\n\n" for every registered
// parameter, in definition order, to w.
func (r *Registry) Dump(w *os.File) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		v := r.values[name]
		var rendered string
		switch v.kind {
		case KindBool:
			rendered = strconv.FormatBool(v.b)
		case KindNumber:
			rendered = strconv.FormatUint(v.num, 10)
		case KindString:
			rendered = v.str
		}
		fmt.Fprintf(w, "%s: %s\n%s\n\n", name, rendered, v.descr)
	}
}
