package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	oerrors "github.com/catalogbridge/ckan2csw/internal/errors"
	"github.com/catalogbridge/ckan2csw/internal/index"
	"github.com/catalogbridge/ckan2csw/internal/output"
)

var (
	exportDir     string
	exportWorkers int
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the metadata index as XML files",
		Long: `Write every document in the metadata index to <identifier>.xml.

XML files left in the directory by an earlier export are removed first, so the
directory mirrors the index.

Examples:
  # Re-export into the configured exportDir
  ckan2csw export

  # Export a copy elsewhere
  ckan2csw export --dir /tmp/metadata`,
		Args: cobra.NoArgs,
		RunE: runExport,
	}

	cmd.Flags().StringVar(&exportDir, "dir", "", "Target directory (default: exportDir)")
	cmd.Flags().IntVar(&exportWorkers, "workers", 0, "Concurrent writes (default: workers)")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfg.Database); err != nil {
		return exitError(oerrors.NewNotFoundError("metadata index not found", cfg.Database,
			"Run 'ckan2csw run' to build the index first."))
	}

	dir := exportDir
	if dir == "" {
		dir = cfg.ExportDir
	}
	workers := exportWorkers
	if workers <= 0 {
		workers = cfg.Workers
	}

	store, err := index.Open(cfg.Database)
	if err != nil {
		return exitError(err)
	}
	defer store.Close()

	n, err := store.Export(cmd.Context(), dir, workers)
	if err != nil {
		return exitError(err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), output.FormatCheckmark(fmt.Sprintf("Exported %d records to %s", n, dir)))
	return nil
}
