package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/catalogbridge/ckan2csw/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show ckan2csw version information.

Displays:
  - ckan2csw version, commit, and build date
  - CUE SDK version the model and config schemas are evaluated with`,
		Args: cobra.NoArgs,
		RunE: runVersion,
	}
}

func runVersion(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
	return nil
}
