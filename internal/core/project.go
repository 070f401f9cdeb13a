package core

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/gobwas/glob"
)

// Enumerator lists the project's candidate source files as absolute paths.
type Enumerator interface {
	SourceFiles(ctx context.Context) ([]string, error)
}

// EnumeratorFunc adapts a function to Enumerator.
type EnumeratorFunc func(ctx context.Context) ([]string, error)

func (f EnumeratorFunc) SourceFiles(ctx context.Context) ([]string, error) { return f(ctx) }

// Project carries everything the engine needs about the codebase. It is
// passed explicitly; nothing in this package reads the working directory.
type Project struct {
	Root   string // absolute
	Config Config
	Files  Enumerator
}

// OpenProject loads js-mv.yaml from root and wires a FileWalker as the enumerator.
func OpenProject(root string) (*Project, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	cfg, err := LoadConfig(abs)
	if err != nil {
		return nil, err
	}
	return &Project{
		Root:   abs,
		Config: cfg,
		Files:  &FileWalker{Root: abs, Config: cfg},
	}, nil
}

// alwaysSkippedDirs are never descended into, regardless of configuration.
var alwaysSkippedDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
}

// FileWalker enumerates **/*.<ext> under Root, honouring .gitignore files
// and the configured exclude globs.
type FileWalker struct {
	Root   string
	Config Config
}

// SourceFiles walks Root and returns matching files sorted by path.
func (w *FileWalker) SourceFiles(ctx context.Context) ([]string, error) {
	excludes, err := compileGlobs(w.Config.Exclude)
	if err != nil {
		return nil, err
	}
	var ignore gitignore.Matcher
	if w.Config.GitignoreEnabled() {
		patterns, err := gitignore.ReadPatterns(osfs.New(w.Root), nil)
		if err != nil {
			return nil, err
		}
		ignore = gitignore.NewMatcher(patterns)
	}
	exts := make(map[string]bool, len(w.Config.Extensions))
	for _, ext := range w.Config.Extensions {
		exts["."+ext] = true
	}

	var files []string
	err = filepath.WalkDir(w.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == w.Root {
			return nil
		}
		rel, err := relPath(w.Root, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if _, skip := alwaysSkippedDirs[d.Name()]; skip {
				return filepath.SkipDir
			}
			if ignore != nil && ignore.Match(strings.Split(rel, "/"), true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !exts[filepath.Ext(d.Name())] {
			return nil
		}
		if ignore != nil && ignore.Match(strings.Split(rel, "/"), false) {
			return nil
		}
		if matchAny(excludes, rel) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func matchAny(globs []glob.Glob, rel string) bool {
	for _, g := range globs {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// RelativeSourceFiles returns the project's source files as project-relative paths.
func (p *Project) RelativeSourceFiles(ctx context.Context) ([]string, error) {
	files, err := p.Files.SourceFiles(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := relPath(p.Root, f)
		if err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	return out, nil
}
