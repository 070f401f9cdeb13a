package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/niklasgrahl/js-mv/internal/core"
)

// styles renders for one writer, so colour is dropped when w is not a terminal.
type styles struct {
	header  lipgloss.Style
	warn    lipgloss.Style
	success lipgloss.Style
	dim     lipgloss.Style
	err     lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("214")),
		success: r.NewStyle().Foreground(lipgloss.Color("78")),
		dim:     r.NewStyle().Faint(true),
		err:     r.NewStyle().Foreground(lipgloss.Color("197")),
	}
}

func errorText(w io.Writer, msg string) string { return newStyles(w).err.Render(msg) }

// validateFormat checks that format is "json" or "text".
func validateFormat(format string) error {
	if format != "json" && format != "text" {
		return fmt.Errorf("invalid format: %q (must be json or text)", format)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// --- Move output ---

func printPlan(w io.Writer, pairs []core.RenamePair) {
	st := newStyles(w)
	width := 0
	for _, p := range pairs {
		width = max(width, len(p.From))
	}
	fmt.Fprintln(w, st.warn.Render("This will rename the following files:"))
	for _, p := range pairs {
		fmt.Fprintf(w, "  %-*s -> %s\n", width, p.From, p.To)
	}
	fmt.Fprintln(w, st.warn.Render("It's advised NOT to have any untracked changes when running this."))
}

func printReportText(w io.Writer, r *core.Report) {
	st := newStyles(w)
	for _, pr := range r.Pairs {
		fmt.Fprintln(w, st.header.Render(fmt.Sprintf("%s -> %s", pr.From, pr.To)))
		for _, rw := range pr.Rewritten {
			fmt.Fprintf(w, "  %s:%d  %s -> %s\n", rw.File, rw.Line, rw.Old, st.success.Render(rw.New))
		}
		for _, f := range pr.Failures {
			fmt.Fprintf(w, "  %s\n", st.err.Render("failed: "+f.Error()))
		}
		summary := fmt.Sprintf("  %d reference(s) in %d file(s) updated", len(pr.Rewritten), len(pr.FilesTouched))
		if pr.Unresolved > 0 {
			summary += fmt.Sprintf(", %d unresolved specifier(s) ignored", pr.Unresolved)
		}
		fmt.Fprintln(w, st.dim.Render(summary))
	}
}

func printReportJSON(w io.Writer, r *core.Report) error {
	return writeJSON(w, r)
}

// --- Refs output ---

type jsonRef struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	Specifier string `json:"specifier"`
	Kind      string `json:"kind"`
	Probe     string `json:"probe"`
}

func toJSONRefs(p *core.Project, refs []core.Reference) []jsonRef {
	out := make([]jsonRef, 0, len(refs))
	for _, r := range refs {
		out = append(out, jsonRef{
			File:      p.Rel(r.File),
			Line:      r.Specifier.Line,
			Specifier: r.Specifier.Value,
			Kind:      string(r.Specifier.Kind),
			Probe:     string(r.Probe),
		})
	}
	return out
}

func printRefsJSON(w io.Writer, p *core.Project, refs []core.Reference) error {
	return writeJSON(w, toJSONRefs(p, refs))
}

func printRefsText(w io.Writer, p *core.Project, refs []core.Reference) {
	for _, r := range toJSONRefs(p, refs) {
		fmt.Fprintf(w, "%s:%d %s (%s)\n", r.File, r.Line, r.Specifier, r.Probe)
	}
}

// --- Resolve output ---

func buildResolveMap(r *core.ResolveResult) map[string]any {
	m := map[string]any{
		"from":      r.From,
		"specifier": r.Specifier,
		"relative":  r.Relative,
		"resolved":  r.Resolved,
	}
	if r.Resolved {
		m["target"] = r.Target
		m["probe"] = string(r.Probe)
	}
	return m
}

func printResolveJSON(w io.Writer, r *core.ResolveResult) error {
	return writeJSON(w, buildResolveMap(r))
}

func printResolveText(w io.Writer, r *core.ResolveResult) {
	fmt.Fprintf(w, "relative: %v\n", r.Relative)
	fmt.Fprintf(w, "resolved: %v\n", r.Resolved)
	if r.Resolved {
		fmt.Fprintf(w, "target: %s\n", r.Target)
		fmt.Fprintf(w, "probe: %s\n", r.Probe)
	}
}
