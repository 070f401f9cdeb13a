package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/niklasgrahl/js-mv/internal/core"
)

// app carries the process streams and the hooks tests replace.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// interactive reports whether stdin is a terminal.
	interactive func() bool
	// edit opens text in the user's editor and returns the saved result.
	edit func(text string) (string, error)
	// getwd resolves relative command-line paths.
	getwd func() (string, error)

	root    string
	format  string
	verbose bool
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, getwd: os.Getwd}
	a.interactive = func() bool { return isTerminal(a.stdin) }
	a.edit = func(text string) (string, error) { return editText(text, a.stdin, a.stdout, a.stderr) }
	return a
}

type moveFlags struct {
	regex bool
	git   bool
	yes   bool
	move  bool
	list  string
}

// noMatchError keeps the user's pattern for the --regex hint.
type noMatchError struct {
	from string
	err  error
}

func (e *noMatchError) Error() string { return e.err.Error() }
func (e *noMatchError) Unwrap() error { return e.err }

func newRootCmd(a *app) *cobra.Command {
	var f moveFlags
	cmd := &cobra.Command{
		Use:   "js-mv <from> [to]",
		Short: "Move .js files and update every relative import to and from them",
		Long: `Move .js files and update every relative import to and from them.

<from> is a file path, or a regular expression with --regex. <to> may use
$1, $2 etc. to reference captured groups. Without <to> the list of renames
is opened in $EDITOR.`,
		Example: `  js-mv src/a.js lib/a.js
  js-mv --regex '(.*)\.test\.js' '$1.spec.js'
  js-mv --regex 'src/(.*)\.js'
  js-mv --regex '(reducers|actions)/([^/]*)\.js' '$2/$1.js'
  js-mv --git`,
		Version:       versionString(),
		Args:          cobra.RangeArgs(0, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMove(cmd.Context(), f, args)
		},
	}
	cmd.Flags().BoolVar(&f.regex, "regex", false, "treat <from> as a regular expression (supports capture groups)")
	cmd.Flags().BoolVar(&f.git, "git", false, "use the renames git detects instead of <from> and <to>")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().BoolVar(&f.move, "move", true, "move the files; --move=false when they were moved already")
	cmd.Flags().StringVar(&f.list, "list", "", `read "from -> to" lines from a file ("-" for stdin)`)

	cmd.PersistentFlags().StringVar(&a.root, "root", "", "project root (default: nearest directory with package.json)")
	cmd.PersistentFlags().StringVar(&a.format, "format", "text", "output format (json or text)")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log every rewritten specifier")

	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	cmd.AddCommand(newRefsCmd(a), newResolveCmd(a))
	return cmd
}

func (a *app) runMove(ctx context.Context, f moveFlags, args []string) error {
	if err := validateFormat(a.format); err != nil {
		return err
	}
	switch {
	case f.git && (len(args) > 0 || f.list != ""):
		return fmt.Errorf("--git takes no <from>, <to> or --list")
	case f.list != "" && len(args) > 0:
		return fmt.Errorf("--list takes no <from> or <to>")
	case !f.git && f.list == "" && len(args) == 0:
		return fmt.Errorf("<from> is required")
	}

	p, err := a.openProject()
	if err != nil {
		return err
	}
	pairs, err := a.buildRenames(ctx, p, f, args)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		return fmt.Errorf("%w: no files to update", core.ErrNoMatchingFiles)
	}

	printPlan(a.stderr, pairs)
	if !f.yes {
		ok, err := a.confirm("Continue?")
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	opts := core.Options{Logger: a.logger()}
	if f.git || !f.move {
		opts.Mover = core.MovedMover{}
	}
	report, runErr := core.Run(ctx, p, pairs, opts)
	if report != nil {
		if err := a.printReport(report); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}
	if n := len(report.Failures()); n > 0 {
		return fmt.Errorf("%d reference(s) could not be rewritten", n)
	}
	return nil
}

// buildRenames turns the command line into an ordered rename list.
func (a *app) buildRenames(ctx context.Context, p *core.Project, f moveFlags, args []string) ([]core.RenamePair, error) {
	if f.git {
		return core.DetectGitRenames(ctx, p.Root)
	}
	if f.list != "" {
		return a.readList(f.list)
	}

	from := args[0]
	if !f.regex {
		rel, err := a.projectPath(p.Root, from)
		if err != nil {
			return nil, err
		}
		from = rel
	}
	var to string
	if len(args) == 2 {
		to = args[1]
		if !f.regex {
			rel, err := a.projectPath(p.Root, to)
			if err != nil {
				return nil, err
			}
			if strings.HasSuffix(to, "/") || isDir(filepath.Join(p.Root, rel)) {
				rel += "/"
			}
			to = rel
		}
	}

	if !f.move {
		// The files are gone already, so there is nothing to match against.
		if to == "" {
			return a.editRenames([]string{from})
		}
		if strings.HasSuffix(to, "/") {
			to += path.Base(from)
		}
		return core.NormalizePairs([]core.RenamePair{{From: from, To: to}}), nil
	}

	files, err := p.RelativeSourceFiles(ctx)
	if err != nil {
		return nil, err
	}
	if to == "" {
		matched, err := core.MatchFiles(files, from, f.regex)
		if err != nil {
			return nil, &noMatchError{from: args[0], err: err}
		}
		return a.editRenames(matched)
	}
	pairs, err := core.MatchRenames(files, from, to, f.regex)
	if err != nil {
		if errors.Is(err, core.ErrNoMatchingFiles) {
			return nil, &noMatchError{from: args[0], err: err}
		}
		return nil, err
	}
	return pairs, nil
}

func (a *app) readList(name string) ([]core.RenamePair, error) {
	if name == "-" {
		return core.ParseRenameList(a.stdin)
	}
	fh, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return core.ParseRenameList(fh)
}

func (a *app) editRenames(files []string) ([]core.RenamePair, error) {
	edited, err := a.edit(core.FormatRenameList(files))
	if err != nil {
		return nil, err
	}
	return core.ParseRenameList(strings.NewReader(edited))
}

// openProject finds the project root and loads its configuration.
func (a *app) openProject() (*core.Project, error) {
	root := a.root
	if root == "" {
		wd, err := a.getwd()
		if err != nil {
			return nil, err
		}
		if root, err = core.FindRoot(wd); err != nil {
			return nil, err
		}
	}
	return core.OpenProject(root)
}

// projectPath converts a path given on the command line, relative to the
// working directory, into a project-relative one.
func (a *app) projectPath(root, arg string) (string, error) {
	abs := arg
	if !filepath.IsAbs(arg) {
		wd, err := a.getwd()
		if err != nil {
			return "", err
		}
		abs = filepath.Join(wd, arg)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%w: %s", core.ErrOutsideRoot, arg)
	}
	return rel, nil
}

func (a *app) logger() *slog.Logger {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
}

func (a *app) printReport(r *core.Report) error {
	switch a.format {
	case "json":
		return printReportJSON(a.stdout, r)
	default:
		printReportText(a.stdout, r)
		return nil
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
