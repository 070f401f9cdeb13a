package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// RenamePair is one file relocation. Both paths are project-relative.
type RenamePair struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Options controls Move and Run.
type Options struct {
	Mover  Mover        // nil means FileMover
	Logger *slog.Logger // nil means slog.Default()
}

func (o Options) mover() Mover {
	if o.Mover == nil {
		return FileMover{}
	}
	return o.Mover
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// PairReport reports the outcome of one rename pair.
type PairReport struct {
	From         string         `json:"from"`
	To           string         `json:"to"`
	Scanned      int            `json:"scanned"`
	Rewritten    []RewrittenRef `json:"rewritten"`
	FilesTouched []string       `json:"files_touched"`
	Unresolved   int            `json:"unresolved"`
	Failures     []Failure      `json:"failures,omitempty"`
}

// Report accumulates PairReports across a run.
type Report struct {
	RunID string       `json:"run_id"`
	Pairs []PairReport `json:"pairs"`
}

// Failures returns the failures of every pair in order.
func (r *Report) Failures() []Failure {
	var out []Failure
	for _, p := range r.Pairs {
		out = append(out, p.Failures...)
	}
	return out
}

// Run processes pairs strictly in order. Each pair's rewrites are on disk
// before the next pair is scanned, so later pairs see the import graph as
// left by earlier ones. The first fatal error stops the run; the report of
// the pairs completed so far is returned with it and nothing is rolled back.
func Run(ctx context.Context, p *Project, pairs []RenamePair, opts Options) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	opts.Logger = opts.logger().With("run", report.RunID)
	for i, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		opts.Logger.Info("processing", "n", i+1, "total", len(pairs), "from", pair.From, "to", pair.To)
		pr, err := Move(ctx, p, pair, opts)
		if err != nil {
			return report, err
		}
		report.Pairs = append(report.Pairs, *pr)
	}
	return report, nil
}

// Move relocates one file and rewrites every reference to it, then re-bases
// the moved file's own relative imports. The physical move happens first;
// if it fails nothing is rewritten.
func Move(ctx context.Context, p *Project, pair RenamePair, opts Options) (*PairReport, error) {
	logger := opts.logger()
	pair, err := normalizePair(p.Root, pair)
	if err != nil {
		return nil, err
	}
	fromAbs := absPath(p.Root, pair.From)
	toAbs := absPath(p.Root, pair.To)

	if err := opts.mover().Move(fromAbs, toAbs); err != nil {
		return nil, fmt.Errorf("%s -> %s: %w", pair.From, pair.To, err)
	}
	logger.Debug("moved file", "from", pair.From, "to", pair.To)

	// Resolve against the tree as it was before the move.
	scan, err := scanReferences(ctx, p, fromAbs, scanOptions{
		present: []string{fromAbs},
		absent:  []string{toAbs},
		skip:    []string{toAbs},
	})
	if err != nil {
		return nil, err
	}
	report := &PairReport{From: pair.From, To: pair.To, Scanned: scan.scanned, Unresolved: scan.unresolved}

	after := scan.resolver.moved(fromAbs, toAbs)

	// Phase 1: references held by other files.
	groups := make(map[string][]rewriteEntry)
	for _, ref := range scan.refs {
		spec, err := externalSpecifier(ref, toAbs, after, p.Config)
		if err != nil {
			return nil, err
		}
		if spec == ref.Specifier.Value {
			continue
		}
		groups[ref.File] = append(groups[ref.File], rewriteEntry{
			file:    ref.File,
			offset:  ref.Specifier.Offset,
			line:    ref.Specifier.Line,
			oldSpec: ref.Specifier.Value,
			newSpec: spec,
		})
	}

	// Phase 2: the moved file's own imports, written relative to its old directory.
	content, err := os.ReadFile(toAbs)
	if err != nil {
		return nil, err
	}
	for _, s := range parseFile(toAbs, content) {
		if !IsRelativeSpecifier(s.Value) {
			continue
		}
		spec, err := movedFileSpecifier(s, fromAbs, toAbs, scan.resolver, after, p.Config)
		if err != nil {
			return nil, err
		}
		if spec == s.Value {
			continue
		}
		groups[toAbs] = append(groups[toAbs], rewriteEntry{
			file:    toAbs,
			offset:  s.Offset,
			line:    s.Line,
			oldSpec: s.Value,
			newSpec: spec,
		})
	}

	applied, failures, err := applyFileRewrites(p.Root, groups)
	report.Rewritten = applied
	report.Failures = failures
	report.FilesTouched = touchedFiles(applied)
	for _, rw := range applied {
		logger.Debug("rewrote specifier", "file", rw.File, "line", rw.Line, "old", rw.Old, "new", rw.New)
	}
	for _, f := range failures {
		logger.Warn("rewrite skipped", "file", f.File, "specifier", f.Specifier, "err", f.Err)
	}
	if err != nil {
		return report, err
	}
	logger.Info("moved", "from", pair.From, "to", pair.To,
		"rewritten", len(applied), "files", len(report.FilesTouched), "failures", len(failures))
	return report, nil
}

// normalizePair cleans both paths and rejects no-op and out-of-root pairs.
func normalizePair(root string, pair RenamePair) (RenamePair, error) {
	var out RenamePair
	for i, path := range []string{pair.From, pair.To} {
		if filepath.IsAbs(path) {
			rel, err := relPath(root, path)
			if err != nil {
				return RenamePair{}, err
			}
			path = rel
		}
		path = NormalizePath(path)
		if path == "." || path == ".." || strings.HasPrefix(path, "../") {
			return RenamePair{}, fmt.Errorf("%w: %s", ErrOutsideRoot, path)
		}
		if i == 0 {
			out.From = path
		} else {
			out.To = path
		}
	}
	if out.From == out.To {
		return RenamePair{}, fmt.Errorf("source and destination are the same: %s", out.From)
	}
	return out, nil
}

// NormalizePairs cleans every pair and drops the ones whose source equals
// their destination.
func NormalizePairs(pairs []RenamePair) []RenamePair {
	out := make([]RenamePair, 0, len(pairs))
	for _, p := range pairs {
		from, to := NormalizePath(p.From), NormalizePath(p.To)
		if from == "." || to == "." || from == to {
			continue
		}
		out = append(out, RenamePair{From: from, To: to})
	}
	return out
}

func touchedFiles(applied []RewrittenRef) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rw := range applied {
		if !seen[rw.File] {
			seen[rw.File] = true
			out = append(out, rw.File)
		}
	}
	sort.Strings(out)
	return out
}
