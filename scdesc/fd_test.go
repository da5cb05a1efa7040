package scdesc

import (
	"math/rand"
	"testing"

	"sysfuzz/argpool"
)

func TestCloseCleanup_EvictsFd(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pool, err := argpool.New(rng)
	if err != nil {
		t.Fatalf("argpool.New: %v", err)
	}
	pool.FdAdd(9)

	args := Args{0: 9}
	closeCleanup(pool, &args, 0, nil)

	if _, err := pool.FdRandom(); err == nil {
		t.Fatal("expected the fd pool to be empty after closeCleanup")
	}
}

func TestCloseCleanup_SkipsOnError(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pool, err := argpool.New(rng)
	if err != nil {
		t.Fatalf("argpool.New: %v", err)
	}
	pool.FdAdd(9)

	args := Args{0: 9}
	closeCleanup(pool, &args, 0, errFake{})

	if _, err := pool.FdRandom(); err != nil {
		t.Fatal("expected the fd pool to be unchanged on a failed close")
	}
}

func TestOpenCleanup_AdmitsNewFd(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pool, err := argpool.New(rng)
	if err != nil {
		t.Fatalf("argpool.New: %v", err)
	}

	args := Args{}
	openCleanup(pool, &args, 11, nil)

	fd, err := pool.FdRandom()
	if err != nil {
		t.Fatalf("FdRandom: %v", err)
	}
	if fd != 11 {
		t.Fatalf("FdRandom() = %d, want 11", fd)
	}
}

type errFake struct{}

func (errFake) Error() string { return "fake error" }
