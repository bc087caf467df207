// Package cmd provides the CLI commands for ContextBrain.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/RealFaceCode/ContextBrain/pkg/version"
)

// NewRootCmd creates the root command for the contextbrain CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contextbrain",
		Short: "Local-first project-context indexing service",
		Long: `ContextBrain indexes a codebase into a structured metadata store
and a semantic vector index, enabling hybrid (keyword + semantic) search
over the project's files, functions, and symbols.

Run 'contextbrain index' once to build the index, then 'contextbrain watch'
to keep it up to date as files change.`,
		Version: version.Version,
	}

	cmd.SetVersionTemplate("contextbrain version {{.Version}}\n")

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newWatchCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
