package core

import (
	"context"
	"os"
	"path/filepath"
)

// Reference is one specifier in a source file that resolves to a project file.
type Reference struct {
	File      string // absolute path of the file containing the specifier
	Specifier Specifier
	Target    string // absolute resolved target; empty when unresolved
	Probe     Probe
}

// scanOptions adjusts the candidate set for one scan.
type scanOptions struct {
	present []string // treated as existing even if absent from disk
	absent  []string // treated as missing even if present on disk
	skip    []string // files whose own specifiers are not collected
}

type scanResult struct {
	refs       []Reference
	unresolved int
	scanned    int
	resolver   *resolver // candidate set the scan resolved against
}

// scanReferences enumerates the project, resolves every specifier of every
// file and returns the ones pointing at target. Nothing is kept after the
// call returns.
func scanReferences(ctx context.Context, p *Project, target string, opts scanOptions) (*scanResult, error) {
	files, err := p.Files.SourceFiles(ctx)
	if err != nil {
		return nil, err
	}
	res := newResolver(p.Config, files)
	for _, path := range opts.present {
		res.add(path)
	}
	for _, path := range opts.absent {
		res.remove(path)
	}
	skip := make(map[string]bool, len(opts.skip))
	for _, path := range opts.skip {
		skip[filepath.Clean(path)] = true
	}

	batch := make([]indexedFile, 0, len(files))
	for _, f := range files {
		if skip[filepath.Clean(f)] {
			continue
		}
		content, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		batch = append(batch, indexedFile{path: f, refs: resolveAll(res, f, parseFile(f, content))})
	}

	ix, err := openIndex(ctx)
	if err != nil {
		return nil, err
	}
	defer ix.Close()
	if err := ix.insertFiles(ctx, batch); err != nil {
		return nil, err
	}
	refs, err := ix.referencesTo(ctx, filepath.Clean(target))
	if err != nil {
		return nil, err
	}
	unresolved, err := ix.unresolvedCount(ctx)
	if err != nil {
		return nil, err
	}
	return &scanResult{refs: refs, unresolved: unresolved, scanned: len(batch), resolver: res}, nil
}

func resolveAll(res *resolver, file string, specs []Specifier) []Reference {
	refs := make([]Reference, 0, len(specs))
	for _, s := range specs {
		ref := Reference{File: file, Specifier: s}
		if target, probe, ok := res.resolve(file, s.Value); ok {
			ref.Target = target
			ref.Probe = probe
		}
		refs = append(refs, ref)
	}
	return refs
}

// FindReferences lists every import of file (project-relative) across the
// project without changing anything.
func FindReferences(ctx context.Context, p *Project, file string) ([]Reference, error) {
	file = NormalizePath(file)
	abs := absPath(p.Root, file)
	if !fileExists(abs) {
		return nil, &os.PathError{Op: "scan", Path: file, Err: os.ErrNotExist}
	}
	result, err := scanReferences(ctx, p, abs, scanOptions{skip: []string{abs}})
	if err != nil {
		return nil, err
	}
	return result.refs, nil
}

// Rel returns abs relative to the project root with forward slashes, or abs
// unchanged if it lies outside the root.
func (p *Project) Rel(abs string) string {
	rel, err := relPath(p.Root, abs)
	if err != nil {
		return abs
	}
	return rel
}
