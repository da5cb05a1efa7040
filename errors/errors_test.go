package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKind_String(t *testing.T) {
	tests := []struct {
		kind     ErrorKind
		expected string
	}{
		{ErrNotFound, "not found"},
		{ErrInvalidConfig, "invalid config"},
		{ErrAlignment, "alignment violation"},
		{ErrResource, "resource error"},
		{ErrFilesystem, "filesystem error"},
		{ErrEntropy, "entropy error"},
		{ErrChildExit, "unexpected child exit"},
		{ErrInternal, "internal error"},
		{ErrorKind(999), "unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("ErrorKind.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFuzzError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *FuzzError
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "<nil>",
		},
		{
			name: "full error",
			err: &FuzzError{
				Op:     "rman.add",
				Kind:   ErrAlignment,
				Detail: "range start is not block-aligned",
				Err:    fmt.Errorf("misaligned range"),
			},
			expected: "rman.add: range start is not block-aligned: misaligned range",
		},
		{
			name: "kind only",
			err: &FuzzError{
				Kind: ErrEntropy,
			},
			expected: "entropy error",
		},
		{
			name: "with underlying error, no detail",
			err: &FuzzError{
				Op:   "argpool.seed",
				Kind: ErrResource,
				Err:  fmt.Errorf("mmap failed"),
			},
			expected: "argpool.seed: resource error: mmap failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("FuzzError.Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFuzzError_Unwrap(t *testing.T) {
	underlying := fmt.Errorf("underlying error")
	err := &FuzzError{
		Op:   "test",
		Kind: ErrInternal,
		Err:  underlying,
	}

	if got := err.Unwrap(); got != underlying {
		t.Errorf("Unwrap() = %v, want %v", got, underlying)
	}

	var nilErr *FuzzError
	if got := nilErr.Unwrap(); got != nil {
		t.Errorf("nil.Unwrap() = %v, want nil", got)
	}
}

func TestFuzzError_Is(t *testing.T) {
	err1 := &FuzzError{Kind: ErrNotFound, Op: "test1"}
	err2 := &FuzzError{Kind: ErrNotFound, Op: "test2"}
	err3 := &FuzzError{Kind: ErrResource, Op: "test3"}

	if !err1.Is(err2) {
		t.Error("err1.Is(err2) should be true (same kind)")
	}
	if err1.Is(err3) {
		t.Error("err1.Is(err3) should be false (different kind)")
	}
	if err1.Is(fmt.Errorf("some error")) {
		t.Error("err1.Is(fmt.Errorf(...)) should be false")
	}

	var nilErr *FuzzError
	if !nilErr.Is(nil) {
		t.Error("nil.Is(nil) should be true")
	}
}

func TestNew(t *testing.T) {
	err := New(ErrInvalidConfig, "validate", "seed is required")

	if err.Kind != ErrInvalidConfig {
		t.Errorf("Kind = %v, want %v", err.Kind, ErrInvalidConfig)
	}
	if err.Op != "validate" {
		t.Errorf("Op = %q, want %q", err.Op, "validate")
	}
	if err.Detail != "seed is required" {
		t.Errorf("Detail = %q, want %q", err.Detail, "seed is required")
	}
}

func TestWrap(t *testing.T) {
	underlying := fmt.Errorf("permission denied")
	err := Wrap(underlying, ErrInternal, "drop privileges")

	if err.Err != underlying {
		t.Error("Wrapped error should preserve underlying error")
	}
	if err.Kind != ErrInternal {
		t.Errorf("Kind = %v, want %v", err.Kind, ErrInternal)
	}
	if err.Op != "drop privileges" {
		t.Errorf("Op = %q, want %q", err.Op, "drop privileges")
	}
}

func TestWrapWithDetail(t *testing.T) {
	underlying := fmt.Errorf("syscall failed")
	err := WrapWithDetail(underlying, ErrChildExit, "fork cleanup", "child killed by signal")

	if err.Detail != "child killed by signal" {
		t.Errorf("Detail = %q, want %q", err.Detail, "child killed by signal")
	}
}

func TestIsKind(t *testing.T) {
	err := &FuzzError{Kind: ErrNotFound}
	wrapped := fmt.Errorf("wrapped: %w", err)

	if !IsKind(err, ErrNotFound) {
		t.Error("IsKind(err, ErrNotFound) should be true")
	}
	if !IsKind(wrapped, ErrNotFound) {
		t.Error("IsKind(wrapped, ErrNotFound) should be true")
	}
	if IsKind(err, ErrResource) {
		t.Error("IsKind(err, ErrResource) should be false")
	}
	if IsKind(fmt.Errorf("plain error"), ErrNotFound) {
		t.Error("IsKind(plain error, ErrNotFound) should be false")
	}
}

func TestGetKind(t *testing.T) {
	err := &FuzzError{Kind: ErrFilesystem}
	wrapped := fmt.Errorf("wrapped: %w", err)

	kind, ok := GetKind(err)
	if !ok || kind != ErrFilesystem {
		t.Errorf("GetKind(err) = (%v, %v), want (%v, true)", kind, ok, ErrFilesystem)
	}

	kind, ok = GetKind(wrapped)
	if !ok || kind != ErrFilesystem {
		t.Errorf("GetKind(wrapped) = (%v, %v), want (%v, true)", kind, ok, ErrFilesystem)
	}

	_, ok = GetKind(fmt.Errorf("plain error"))
	if ok {
		t.Error("GetKind(plain error) should return false")
	}
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  *FuzzError
		kind ErrorKind
	}{
		{"ErrUnknownParam", ErrUnknownParam, ErrInvalidConfig},
		{"ErrParamType", ErrParamType, ErrInvalidConfig},
		{"ErrUnknownSyscall", ErrUnknownSyscall, ErrNotFound},
		{"ErrUnknownGroup", ErrUnknownGroup, ErrNotFound},
		{"ErrBlkszNotPowerOfTwo", ErrBlkszNotPowerOfTwo, ErrAlignment},
		{"ErrRangeMisaligned", ErrRangeMisaligned, ErrAlignment},
		{"ErrPoolEmpty", ErrPoolEmpty, ErrResource},
		{"ErrNoFit", ErrNoFit, ErrResource},
		{"ErrHierarchyCreate", ErrHierarchyCreate, ErrFilesystem},
		{"ErrPathEscape", ErrPathEscape, ErrFilesystem},
		{"ErrEntropyShortRead", ErrEntropyShortRead, ErrEntropy},
		{"ErrChildSignaled", ErrChildSignaled, ErrChildExit},
		{"ErrChildNonZeroExit", ErrChildNonZeroExit, ErrChildExit},
		{"ErrPrivDrop", ErrPrivDrop, ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("%s.Kind = %v, want %v", tt.name, tt.err.Kind, tt.kind)
			}
			wrapped := Wrap(fmt.Errorf("underlying"), tt.kind, "test")
			if !errors.Is(wrapped, tt.err) {
				t.Errorf("errors.Is(wrapped, %s) should be true", tt.name)
			}
		})
	}
}

func TestErrorChain(t *testing.T) {
	underlying := fmt.Errorf("short read")
	err1 := Wrap(underlying, ErrEntropy, "read seed")
	err2 := fmt.Errorf("startup failed: %w", err1)

	if !errors.Is(err2, ErrEntropyShortRead) {
		t.Error("errors.Is should find ErrEntropyShortRead in chain")
	}

	var ferr *FuzzError
	if !errors.As(err2, &ferr) {
		t.Error("errors.As should find FuzzError in chain")
	}
	if ferr.Op != "read seed" {
		t.Errorf("ferr.Op = %q, want %q", ferr.Op, "read seed")
	}

	if errors.Unwrap(err1) != underlying {
		t.Error("Unwrap should return underlying error")
	}
}
