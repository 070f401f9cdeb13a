package main

import (
	"github.com/spf13/cobra"

	"github.com/niklasgrahl/js-mv/internal/core"
)

func newRefsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refs <file>",
		Short: "List every import of a file without moving it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(a.format); err != nil {
				return err
			}
			p, err := a.openProject()
			if err != nil {
				return err
			}
			file, err := a.projectPath(p.Root, args[0])
			if err != nil {
				return err
			}
			refs, err := core.FindReferences(cmd.Context(), p, file)
			if err != nil {
				return err
			}
			if a.format == "json" {
				return printRefsJSON(a.stdout, p, refs)
			}
			printRefsText(a.stdout, p, refs)
			return nil
		},
	}
}
