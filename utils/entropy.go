package utils

import (
	"encoding/binary"
	"os"

	fuzzerr "sysfuzz/errors"
)

const urandomPath = "/dev/urandom"

// ReadSeed draws one PRNG seed from the OS entropy device. Each worker
// later derives its own seed as base_seed + index, so only the parent calls
// this, once, at startup (unless -s supplies an explicit seed).
func ReadSeed() (int64, error) {
	f, err := os.Open(urandomPath)
	if err != nil {
		return 0, fuzzerr.Wrap(err, fuzzerr.ErrEntropy, "utils.ReadSeed")
	}
	defer f.Close()

	var buf [8]byte
	n, err := f.Read(buf[:])
	if err != nil {
		return 0, fuzzerr.Wrap(err, fuzzerr.ErrEntropy, "utils.ReadSeed")
	}
	if n != len(buf) {
		return 0, fuzzerr.ErrEntropyShortRead
	}

	return int64(binary.LittleEndian.Uint64(buf[:])), nil
}
