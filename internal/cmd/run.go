package cmd

import (
	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one full harvest",
		Long: `Run one full harvest.

The metadata index is emptied, every dataset, series and service record in
the catalog is rendered into the output schema and indexed, and the index is
exported as one XML file per record.

Records that fail to transform are reported and skipped. Configuration,
catalog and index failures abort the run.

Examples:
  # Harvest with the default configuration
  ckan2csw run

  # Harvest another catalog into the base ISO19139 schema
  ckan2csw run --ckan-url https://data.example.org/ --output-schema iso19139`,
		Args: cobra.NoArgs,
		RunE: runRun,
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	closeLog, err := startRunLog()
	if err != nil {
		return exitError(err)
	}
	defer closeLog()

	h, err := newHarvester(cfg, cmd.OutOrStdout())
	if err != nil {
		return exitError(err)
	}

	_, err = h.run(cmd.Context())
	return exitError(err)
}
