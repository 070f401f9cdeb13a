package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Probe records which resolution step found a specifier's target.
type Probe string

const (
	ProbeExact     Probe = "exact"     // ./b.js -> b.js
	ProbeExtension Probe = "extension" // ./b -> b.js
	ProbeIndex     Probe = "index"     // ./lib -> lib/index.js
)

// IsRelativeSpecifier reports whether spec is a relative path ("./x",
// "../x", "." or ".."). Bare package names are never relative.
func IsRelativeSpecifier(spec string) bool {
	return spec == "." || spec == ".." || strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

// namesDirectory reports whether spec can only denote a directory.
func namesDirectory(spec string) bool {
	return spec == "." || spec == ".." || strings.HasSuffix(spec, "/")
}

// resolver resolves relative specifiers against a fixed candidate set.
type resolver struct {
	exts  []string
	index string
	files map[string]bool // absolute, cleaned
}

func newResolver(cfg Config, files []string) *resolver {
	set := make(map[string]bool, len(files))
	for _, f := range files {
		set[filepath.Clean(f)] = true
	}
	return &resolver{exts: cfg.Extensions, index: cfg.Index, files: set}
}

// add makes path a member of the candidate set.
func (r *resolver) add(path string) { r.files[filepath.Clean(path)] = true }

// remove drops path from the candidate set.
func (r *resolver) remove(path string) { delete(r.files, filepath.Clean(path)) }

// moved returns a copy of the candidate set with from replaced by to.
func (r *resolver) moved(from, to string) *resolver {
	files := make(map[string]bool, len(r.files)+1)
	for f := range r.files {
		files[f] = true
	}
	out := &resolver{exts: r.exts, index: r.index, files: files}
	out.remove(from)
	out.add(to)
	return out
}

// resolve applies the probing order: exact path, then each extension
// appended, then <index>.<ext> inside the directory. The first candidate
// present in the set wins.
func (r *resolver) resolve(fromFile, spec string) (string, Probe, bool) {
	if !IsRelativeSpecifier(spec) {
		return "", "", false
	}
	base := filepath.Join(filepath.Dir(fromFile), filepath.FromSlash(spec))
	if !namesDirectory(spec) {
		if r.files[base] {
			return base, ProbeExact, true
		}
		for _, ext := range r.exts {
			if p := base + "." + ext; r.files[p] {
				return p, ProbeExtension, true
			}
		}
	}
	for _, ext := range r.exts {
		if p := filepath.Join(base, r.index+"."+ext); r.files[p] {
			return p, ProbeIndex, true
		}
	}
	return "", "", false
}

// RelativeSpecifier returns the shortest "./" or "../" prefixed path from
// fromDir to target, always with forward slashes.
func RelativeSpecifier(fromDir, target string) (string, error) {
	rel, err := filepath.Rel(fromDir, target)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	switch {
	case rel == "." || rel == "..":
		return rel, nil
	case strings.HasPrefix(rel, "../"):
		return rel, nil
	}
	return "./" + rel, nil
}

// ResolveResult describes how a specifier resolves from a file.
type ResolveResult struct {
	From      string // project-relative file the specifier was written in
	Specifier string
	Relative  bool
	Resolved  bool
	Target    string // project-relative, empty when unresolved
	Probe     Probe
}

// Resolve resolves spec as written in fromFile (project-relative) against
// the project's current source files.
func Resolve(ctx context.Context, p *Project, fromFile, spec string) (*ResolveResult, error) {
	fromFile = NormalizePath(fromFile)
	files, err := p.Files.SourceFiles(ctx)
	if err != nil {
		return nil, err
	}
	fromAbs := absPath(p.Root, fromFile)
	if !fileExists(fromAbs) {
		return nil, fmt.Errorf("file not found: %s", fromFile)
	}
	res := &ResolveResult{From: fromFile, Specifier: spec, Relative: IsRelativeSpecifier(spec)}
	target, probe, ok := newResolver(p.Config, files).resolve(fromAbs, spec)
	if !ok {
		return res, nil
	}
	rel, err := relPath(p.Root, target)
	if err != nil {
		return nil, err
	}
	res.Resolved = true
	res.Target = rel
	res.Probe = probe
	return res, nil
}
