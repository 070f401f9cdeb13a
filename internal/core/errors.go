package core

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNoMatchingFiles is returned when a rename request matches no project file.
	ErrNoMatchingFiles = errors.New("no matching files")

	// ErrStaleSpecifier means the specifier recorded by the scanner is no longer
	// at its recorded offset when the rewrite is applied.
	ErrStaleSpecifier = errors.New("specifier not found at recorded position")

	// ErrMoveFailed wraps any failure of the physical move of a pair.
	ErrMoveFailed = errors.New("move failed")

	// ErrOutsideRoot is returned for paths that escape the project root.
	ErrOutsideRoot = errors.New("path is outside the project root")

	// ErrNotGitRepository is returned by DetectGitRenames outside a work tree.
	ErrNotGitRepository = errors.New("not a git repository")
)

// Failure is a single rewrite that could not be applied. Failures are
// collected per pair and do not stop the run.
type Failure struct {
	File      string // project-relative
	Specifier string
	Err       error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %q: %v", f.File, f.Specifier, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// MarshalJSON renders the wrapped error as its message.
func (f Failure) MarshalJSON() ([]byte, error) {
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	return json.Marshal(struct {
		File      string `json:"file"`
		Specifier string `json:"specifier"`
		Error     string `json:"error"`
	}{f.File, f.Specifier, msg})
}
