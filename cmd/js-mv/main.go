package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/niklasgrahl/js-mv/internal/core"
)

var version = "dev"

func main() {
	cmd := newRootCmd(newApp(os.Stdin, os.Stdout, os.Stderr))
	if err := cmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError writes err to w. A rename request that matched nothing gets
// a hint about --regex.
func printError(w io.Writer, err error) {
	var noMatch *noMatchError
	if errors.As(err, &noMatch) {
		fmt.Fprintln(w, errorText(w, fmt.Sprintf("Found no matching files matching %s. Did you forget --regex?", noMatch.from)))
		return
	}
	if errors.Is(err, core.ErrNoMatchingFiles) {
		fmt.Fprintln(w, errorText(w, "Found no files to update"))
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

func versionString() string {
	v := version
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	return v
}
