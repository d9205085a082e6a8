package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/catalogbridge/ckan2csw/internal/config"
	oerrors "github.com/catalogbridge/ckan2csw/internal/errors"
	"github.com/catalogbridge/ckan2csw/internal/output"
)

// NewConfigVetCmd creates the config vet command.
func NewConfigVetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vet",
		Short: "Validate configuration",
		Long: `Validate a ckan2csw configuration file.

Checks performed:
  1. Config file exists at resolved path
  2. Config file is valid YAML
  3. Values satisfy the configuration schema (URLs, ranges)
  4. cron.timezone names a known time zone
  5. templatesDir and mappingsDir, when set, are directories

The config path is resolved using precedence:
  --config flag > CKAN2CSW_CONFIG env > ~/.ckan2csw/config.yaml

Examples:
  # Validate default configuration
  ckan2csw config vet

  # Validate custom config path
  ckan2csw config vet --config /etc/ckan2csw.yaml`,
		Args: cobra.NoArgs,
		RunE: runConfigVet,
	}
}

func runConfigVet(cmd *cobra.Command, args []string) error {
	path := configFlag
	if path == "" {
		p, err := config.GetConfigFile()
		if err != nil {
			return exitError(oerrors.Wrap(oerrors.ErrNotFound, "could not resolve config path"))
		}
		path = p
	}
	path, err := config.ExpandPath(path)
	if err != nil {
		return exitError(err)
	}

	output.Debug("validating config", "path", path)

	v, err := config.NewValidator()
	if err != nil {
		return exitError(err)
	}
	if err := v.ValidateFile(path); err != nil {
		return exitError(err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), output.FormatCheckmark("Configuration is valid: "+path))
	return nil
}
