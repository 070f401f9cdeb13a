package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
)

// DetectGitRenames returns the renames git sees under root. Everything under
// root is staged so git can pair deletions with additions, then unstaged
// again. Pairs are project-relative.
func DetectGitRenames(ctx context.Context, root string) ([]RenamePair, error) {
	repo, err := gogit.PlainOpenWithOptions(root, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotGitRepository, root)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotGitRepository, err)
	}
	top, err := canonicalDir(wt.Filesystem.Root())
	if err != nil {
		return nil, err
	}
	base, err := canonicalDir(root)
	if err != nil {
		return nil, err
	}

	if _, err := runGitCommand(ctx, root, "add", "--", "."); err != nil {
		return nil, err
	}
	out, diffErr := runGitCommand(ctx, root, "-c", "core.quotePath=false",
		"diff", "--cached", "--summary", "--diff-filter=R", "--", ".")
	if _, err := runGitCommand(ctx, root, "reset", "-q", "--", "."); err != nil && diffErr == nil {
		diffErr = err
	}
	if diffErr != nil {
		return nil, diffErr
	}

	var pairs []RenamePair
	for _, r := range parseRenameSummary(out) {
		from, err := relPath(base, filepath.Join(top, filepath.FromSlash(r.From)))
		if errors.Is(err, ErrOutsideRoot) {
			continue
		} else if err != nil {
			return nil, err
		}
		to, err := relPath(base, filepath.Join(top, filepath.FromSlash(r.To)))
		if errors.Is(err, ErrOutsideRoot) {
			continue
		} else if err != nil {
			return nil, err
		}
		pairs = append(pairs, RenamePair{From: from, To: to})
	}
	return pairs, nil
}

// canonicalDir returns dir as an absolute path with symlinks resolved, so
// paths reported by git and by the caller compare equal.
func canonicalDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// parseRenameSummary extracts pairs from `git diff --summary` lines such as
//
//	rename src/{a.js => lib/a.js} (100%)
//	rename {src => lib}/a.js (97%)
//	rename a.js => b.js (100%)
//
// Paths are relative to the repository top level.
func parseRenameSummary(out string) []RenamePair {
	var pairs []RenamePair
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		rest, ok := strings.CutPrefix(line, "rename ")
		if !ok {
			continue
		}
		if i := strings.LastIndex(rest, " ("); i >= 0 && strings.HasSuffix(rest, "%)") {
			rest = rest[:i]
		}
		var from, to string
		open, closing := strings.Index(rest, "{"), strings.LastIndex(rest, "}")
		if open >= 0 && closing > open {
			prefix, inner, suffix := rest[:open], rest[open+1:closing], rest[closing+1:]
			a, b, ok := strings.Cut(inner, " => ")
			if !ok {
				continue
			}
			from, to = prefix+a+suffix, prefix+b+suffix
		} else {
			from, to, ok = strings.Cut(rest, " => ")
			if !ok {
				continue
			}
		}
		// An empty side of "{ => sub}" leaves a double slash behind.
		pairs = append(pairs, RenamePair{From: path.Clean(from), To: path.Clean(to)})
	}
	return pairs
}

// runGitCommand executes git in dir and returns its standard output.
func runGitCommand(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", parseGitError(err, stderr.String())
	}
	return stdout.String(), nil
}

// parseGitError converts git command errors into package errors.
func parseGitError(err error, stderr string) error {
	if strings.Contains(stderr, "not a git repository") {
		return ErrNotGitRepository
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("git command failed: %s", strings.TrimSpace(stderr))
	}
	return err
}
