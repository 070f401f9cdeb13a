package core

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/niklasgrahl/js-mv/internal/testutil"
)

// newProject writes a txtar archive to a temp dir and opens it.
func newProject(t *testing.T, archive string) *Project {
	t.Helper()
	root, err := testutil.WriteProject(t.TempDir(), archive)
	require.NoError(t, err)
	p, err := OpenProject(root)
	require.NoError(t, err)
	return p
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func quietOptions() Options {
	return Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}
