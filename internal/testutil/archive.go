// Package testutil holds helpers shared by tests.
package testutil

import (
	"os"
	"path/filepath"

	"golang.org/x/tools/txtar"
)

// WriteArchive creates every file of ar under dir, making parent
// directories as needed.
func WriteArchive(dir string, ar *txtar.Archive) error {
	for _, f := range ar.Files {
		targ := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(targ), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(targ, f.Data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// WriteProject parses src as a txtar archive and writes it under a fresh
// directory below parent. It returns that directory.
func WriteProject(parent, src string) (string, error) {
	dir, err := os.MkdirTemp(parent, "project")
	if err != nil {
		return "", err
	}
	if err := WriteArchive(dir, txtar.Parse([]byte(src))); err != nil {
		return "", err
	}
	return dir, nil
}
