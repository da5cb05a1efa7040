package argpool

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	fuzzerr "sysfuzz/errors"
)

const randNameLen = 12

const randNameAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randName(rng *rand.Rand) string {
	var sb strings.Builder
	sb.Grow(randNameLen)
	for i := 0; i < randNameLen; i++ {
		sb.WriteByte(randNameAlphabet[rng.Intn(len(randNameAlphabet))])
	}
	return sb.String()
}

// HierarchyParams bounds the random file hierarchy built under root.
type HierarchyParams struct {
	Depth            uint64
	MaxFileSize      uint64
	MaxFilesPerDir   uint64
	MaxSubdirsPerDir uint64
}

// BuildHierarchy recursively populates root with randomly named files and
// subdirectories per hp, and admits every created entry's descriptor into
// p's fd/dirfd pools. Every created regular file is zero-filled up to a
// random size in [0, MaxFileSize).
func (p *Pool) BuildHierarchy(root string, hp HierarchyParams) error {
	dirfd, err := openDir(root)
	if err != nil {
		return fuzzerr.Wrap(err, fuzzerr.ErrFilesystem, "argpool.BuildHierarchy")
	}
	p.DirfdAdd(dirfd)

	return p.buildHierarchyLevel(root, hp, hp.Depth)
}

func (p *Pool) buildHierarchyLevel(dir string, hp HierarchyParams, depthRemaining uint64) error {
	nfiles := int(p.rng.Int63n(int64(hp.MaxFilesPerDir))) + 1
	for i := 0; i < nfiles; i++ {
		path := filepath.Join(dir, randName(p.rng))
		size := uint64(0)
		if hp.MaxFileSize > 0 {
			size = uint64(p.rng.Int63n(int64(hp.MaxFileSize)))
		}
		fd, err := createZeroFile(path, size)
		if err != nil {
			return fuzzerr.Wrap(err, fuzzerr.ErrFilesystem, "argpool.buildHierarchyLevel")
		}
		p.FdAdd(fd)
	}

	if depthRemaining == 0 || hp.MaxSubdirsPerDir == 0 {
		return nil
	}

	nsubdirs := int(p.rng.Int63n(int64(hp.MaxSubdirsPerDir))) + 1
	for i := 0; i < nsubdirs; i++ {
		sub := filepath.Join(dir, randName(p.rng))
		if err := os.Mkdir(sub, 0o755); err != nil {
			return fuzzerr.Wrap(err, fuzzerr.ErrFilesystem, "argpool.buildHierarchyLevel")
		}
		dirfd, err := openDir(sub)
		if err != nil {
			return fuzzerr.Wrap(err, fuzzerr.ErrFilesystem, "argpool.buildHierarchyLevel")
		}
		p.DirfdAdd(dirfd)

		if err := p.buildHierarchyLevel(sub, hp, depthRemaining-1); err != nil {
			return err
		}
	}
	return nil
}

// openDir and createZeroFile use unix.Open directly rather than os.Open:
// an *os.File's finalizer closes its fd on garbage collection, which would
// silently invalidate pool entries behind the fuzzer's back.
func openDir(path string) (int, error) {
	return unix.Open(path, unix.O_RDONLY|unix.O_DIRECTORY, 0)
}

func createZeroFile(path string, size uint64) (int, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT|unix.O_EXCL, 0o644)
	if err != nil {
		return 0, err
	}
	if size > 0 {
		if err := unix.Ftruncate(fd, int64(size)); err != nil {
			unix.Close(fd)
			os.Remove(path)
			return 0, err
		}
	}
	return fd, nil
}
