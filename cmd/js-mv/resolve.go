package main

import (
	"github.com/spf13/cobra"

	"github.com/niklasgrahl/js-mv/internal/core"
)

func newResolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <file> <specifier>",
		Short: "Show which file a specifier written in <file> resolves to",
		Args:  cobra.ExactArgs(2),
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
			result, err := core.Resolve(cmd.Context(), p, file, args[1])
			if err != nil {
				return err
			}
			if a.format == "json" {
				return printResolveJSON(a.stdout, result)
			}
			printResolveText(a.stdout, result)
			return nil
		},
	}
}
