package core

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
)

// MatchFiles returns the project-relative files selected by from. Without
// regex, from must equal a file path; with regex, every file the expression
// matches anywhere is selected.
func MatchFiles(files []string, from string, regex bool) ([]string, error) {
	var re *regexp.Regexp
	if regex {
		var err error
		if re, err = regexp.Compile(from); err != nil {
			return nil, fmt.Errorf("invalid --regex pattern %q: %w", from, err)
		}
	} else {
		from = NormalizePath(from)
	}
	var out []string
	for _, f := range files {
		if (re != nil && re.MatchString(f)) || (re == nil && f == from) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w matching %s", ErrNoMatchingFiles, from)
	}
	return out, nil
}

// MatchRenames builds rename pairs from a from/to request. With regex, the
// first match in each path is replaced by to, where $1, ${name} etc. refer
// to the match's capture groups. A to ending in "/" is a directory: the
// source basename is appended.
func MatchRenames(files []string, from, to string, regex bool) ([]RenamePair, error) {
	matched, err := MatchFiles(files, from, regex)
	if err != nil {
		return nil, err
	}
	var re *regexp.Regexp
	if regex {
		re = regexp.MustCompile(from)
	}
	pairs := make([]RenamePair, 0, len(matched))
	for _, f := range matched {
		dest := to
		if re != nil {
			m := re.FindStringSubmatchIndex(f)
			expanded := re.ExpandString(nil, to, f, m)
			dest = f[:m[0]] + string(expanded) + f[m[1]:]
		}
		if strings.HasSuffix(dest, "/") {
			dest += path.Base(f)
		}
		pairs = append(pairs, RenamePair{From: f, To: NormalizePath(dest)})
	}
	return NormalizePairs(pairs), nil
}

// FormatRenameList renders files as an editable "from -> to" list with the
// arrows aligned. Every line starts out as a no-op.
func FormatRenameList(files []string) string {
	width := 0
	for _, f := range files {
		width = max(width, len(f))
	}
	var b strings.Builder
	for _, f := range files {
		fmt.Fprintf(&b, "%-*s -> %s\n", width, f, f)
	}
	return b.String()
}

// ParseRenameList reads "from -> to" lines. Blank lines, "#" comments,
// lines without an arrow and lines whose sides are equal are dropped.
func ParseRenameList(r io.Reader) ([]RenamePair, error) {
	var pairs []RenamePair
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		from, to, ok := strings.Cut(line, "->")
		if !ok {
			continue
		}
		from, to = strings.TrimSpace(from), strings.TrimSpace(to)
		if from == "" || to == "" {
			return nil, fmt.Errorf("line %d: incomplete rename %q", lineNo, line)
		}
		pairs = append(pairs, RenamePair{From: from, To: to})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return NormalizePairs(pairs), nil
}
