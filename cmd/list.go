package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	fuzzerr "sysfuzz/errors"
	"sysfuzz/scdesc"
)

var fuzzListGroup string

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&fuzzListGroup, "list-group", "l", "", "list syscalls in a group (or every group, if omitted) and exit")
	f.Lookup("list-group").NoOptDefVal = " "
}

// maybeListGroup runs before the fuzz loop starts; if -l was given it lists
// the requested group's syscalls (or every group, with no argument) and
// signals the caller to exit without fuzzing.
func maybeListGroup(cmd cobraFlagChecker) (handled bool, err error) {
	if !cmd.Changed("list-group") {
		return false, nil
	}

	// NoOptDefVal is a single space rather than "" since pflag treats an
	// empty NoOptDefVal as "this flag takes no value at all"; trim it back
	// to empty before treating it as "no group given".
	group := strings.TrimSpace(fuzzListGroup)

	if group == "" {
		names := scdesc.GroupNames()
		sort.Strings(names)
		for _, name := range names {
			fmt.Println(colorize(name))
		}
		return true, nil
	}

	mask, ok := scdesc.GroupLookup(group)
	if !ok {
		return true, fuzzerr.ErrUnknownGroup
	}

	var names []string
	for _, d := range scdesc.All() {
		if d.Groups&mask != 0 {
			names = append(names, d.Name)
		}
	}
	sort.Strings(names)

	w := os.Stdout
	for _, name := range names {
		fmt.Fprintln(w, colorize(name))
	}
	return true, nil
}

// colorize bolds s for an interactive terminal and leaves it plain when
// stdout is redirected to a pipe or file.
func colorize(s string) string {
	if !isOutputTerminal(os.Stdout) {
		return s
	}
	return "\x1b[1m" + s + "\x1b[0m"
}

// cobraFlagChecker is the subset of *cobra.Command's flag set this package
// needs, kept narrow so maybeListGroup doesn't have to import cobra itself.
type cobraFlagChecker interface {
	Changed(name string) bool
}
