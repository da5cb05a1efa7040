package cmd

import (
	"os"
	"runtime"

	"sysfuzz/params"
)

var fuzzDump bool

func init() {
	rootCmd.Flags().BoolVarP(&fuzzDump, "dump-params", "d", false, "dump the parameter registry and exit")
}

// maybeDumpParams runs before the fuzz loop starts; if -d was given it
// prints the registry and signals the caller to exit without fuzzing.
func maybeDumpParams() (handled bool, err error) {
	if !fuzzDump {
		return false, nil
	}
	ncpu := uint64(runtime.NumCPU())
	pageCount, err := systemPageCount()
	if err != nil {
		return true, err
	}
	registry := params.NewRegistry("", pageCount, ncpu)
	registry.Dump(os.Stdout)
	return true, nil
}
