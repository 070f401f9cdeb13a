package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// rewriteEntry is one planned specifier substitution.
type rewriteEntry struct {
	file    string // absolute
	offset  int
	line    int
	oldSpec string
	newSpec string
}

// RewrittenRef reports one applied substitution.
type RewrittenRef struct {
	File string `json:"file"` // project-relative
	Line int    `json:"line"`
	Old  string `json:"old"`
	New  string `json:"new"`
}

// externalSpecifier computes the specifier a referencing file needs once
// the target has moved to "to". The caller's extension convention is kept
// when the shorter form still resolves to "to" in the post-move file set
// after; otherwise a more explicit form is used, ending with the full path.
func externalSpecifier(ref Reference, to string, after *resolver, cfg Config) (string, error) {
	fromDir := filepath.Dir(ref.File)
	full, err := RelativeSpecifier(fromDir, to)
	if err != nil {
		return "", err
	}
	var candidates []string
	switch {
	case ref.Probe == ProbeIndex && isIndexFile(to, cfg):
		dir, err := RelativeSpecifier(fromDir, filepath.Dir(to))
		if err != nil {
			return "", err
		}
		if strings.HasSuffix(ref.Specifier.Value, "/") && !strings.HasSuffix(dir, "/") {
			dir += "/"
		}
		candidates = append(candidates, dir, stripSourceExt(full, cfg))
	case ref.Probe == ProbeExtension || ref.Probe == ProbeIndex:
		candidates = append(candidates, stripSourceExt(full, cfg))
	}
	for _, spec := range candidates {
		if landsOn(after, ref.File, spec, to) {
			return spec, nil
		}
	}
	return full, nil
}

// landsOn reports whether spec, written in file, resolves to target. A
// non-source file on disk at the exact path shadows the extension and
// index probes.
func landsOn(after *resolver, file, spec, target string) bool {
	got, _, ok := after.resolve(file, spec)
	if !ok || got != filepath.Clean(target) {
		return false
	}
	if !namesDirectory(spec) {
		exact := filepath.Join(filepath.Dir(file), filepath.FromSlash(spec))
		if exact != got && fileExists(exact) {
			return false
		}
	}
	return true
}

// movedFileSpecifier recomputes one of the moved file's own relative
// specifiers. The dependency stays where it is; only the directory the path
// is relative to changes, so the specifier is re-based lexically and keeps
// its extension convention. A specifier naming the moved file itself
// follows it to the new location. before and after are the candidate sets
// on either side of the move.
func movedFileSpecifier(spec Specifier, from, to string, before, after *resolver, cfg Config) (string, error) {
	if target, probe, ok := before.resolve(from, spec.Value); ok && target == filepath.Clean(from) {
		return externalSpecifier(Reference{File: to, Specifier: spec, Target: target, Probe: probe}, to, after, cfg)
	}
	if filepath.Dir(from) == filepath.Dir(to) {
		return spec.Value, nil
	}
	dep := filepath.Join(filepath.Dir(from), filepath.FromSlash(spec.Value))
	rel, err := RelativeSpecifier(filepath.Dir(to), dep)
	if err != nil {
		return "", err
	}
	if strings.HasSuffix(spec.Value, "/") && !strings.HasSuffix(rel, "/") {
		rel += "/"
	}
	return rel, nil
}

func isIndexFile(path string, cfg Config) bool {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) == cfg.Index && isSourceExt(ext, cfg)
}

func isSourceExt(ext string, cfg Config) bool {
	ext = strings.TrimPrefix(ext, ".")
	for _, e := range cfg.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// stripSourceExt removes a configured source extension from a specifier.
func stripSourceExt(spec string, cfg Config) string {
	ext := filepath.Ext(spec)
	if ext == "" || !isSourceExt(ext, cfg) {
		return spec
	}
	return strings.TrimSuffix(spec, ext)
}

// applyFileRewrites applies entries grouped by file. A substitution whose
// old text is no longer at its recorded offset is returned as a failure and
// the others still apply. Files with no effective change are not written.
// A read or write error aborts with that error.
func applyFileRewrites(root string, groups map[string][]rewriteEntry) ([]RewrittenRef, []Failure, error) {
	paths := make([]string, 0, len(groups))
	for path := range groups {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var applied []RewrittenRef
	var failures []Failure
	for _, path := range paths {
		ok, failed, err := rewriteFile(path, groups[path])
		if err != nil {
			return applied, failures, err
		}
		rel, relErr := relPath(root, path)
		if relErr != nil {
			rel = filepath.ToSlash(path)
		}
		for _, re := range ok {
			applied = append(applied, RewrittenRef{File: rel, Line: re.line, Old: re.oldSpec, New: re.newSpec})
		}
		for _, re := range failed {
			failures = append(failures, Failure{
				File:      rel,
				Specifier: re.oldSpec,
				Err:       fmt.Errorf("%w: line %d offset %d", ErrStaleSpecifier, re.line, re.offset),
			})
		}
	}
	return applied, failures, nil
}

// rewriteFile splices every entry into the file's current content, from the
// highest offset down so earlier offsets stay valid, and writes the result
// back with the original permission bits.
func rewriteFile(path string, entries []rewriteEntry) (applied, failed []rewriteEntry, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	sorted := make([]rewriteEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].offset > sorted[j].offset })

	out := content
	for _, re := range sorted {
		if re.oldSpec == re.newSpec {
			continue
		}
		end := re.offset + len(re.oldSpec)
		if re.offset < 0 || end > len(content) || string(content[re.offset:end]) != re.oldSpec {
			failed = append(failed, re)
			continue
		}
		spliced := make([]byte, 0, len(out)-len(re.oldSpec)+len(re.newSpec))
		spliced = append(spliced, out[:re.offset]...)
		spliced = append(spliced, re.newSpec...)
		spliced = append(spliced, out[end:]...)
		out = spliced
		applied = append(applied, re)
	}
	if len(applied) == 0 {
		return nil, failed, nil
	}
	if err := writeFilePreservePerm(path, out, info.Mode().Perm()); err != nil {
		return nil, nil, err
	}
	// Report in source order.
	for i, j := 0, len(applied)-1; i < j; i, j = i+1, j-1 {
		applied[i], applied[j] = applied[j], applied[i]
	}
	return applied, failed, nil
}
