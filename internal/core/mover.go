package core

import (
	"fmt"
	"os"
	"path/filepath"
)

// Mover performs the physical relocation of one file. Paths are absolute.
type Mover interface {
	Move(from, to string) error
}

// FileMover renames files on disk, creating the destination directory.
// It refuses to overwrite an existing destination.
type FileMover struct{}

func (FileMover) Move(from, to string) error {
	if !fileExists(from) {
		return fmt.Errorf("%w: source file not found: %s", ErrMoveFailed, from)
	}
	if _, err := os.Lstat(to); err == nil {
		return fmt.Errorf("%w: destination already exists: %s", ErrMoveFailed, to)
	}
	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrMoveFailed, err)
	}
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("%w: %v", ErrMoveFailed, err)
	}
	return nil
}

// MovedMover is used when files were already moved (by hand or by git);
// it only checks that the move really happened.
type MovedMover struct{}

func (MovedMover) Move(from, to string) error {
	if fileExists(from) {
		return fmt.Errorf("%w: source still exists, was it moved? %s", ErrMoveFailed, from)
	}
	if !fileExists(to) {
		return fmt.Errorf("%w: destination not found: %s", ErrMoveFailed, to)
	}
	return nil
}
