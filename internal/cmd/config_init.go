package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/catalogbridge/ckan2csw/internal/config"
	oerrors "github.com/catalogbridge/ckan2csw/internal/errors"
	"github.com/catalogbridge/ckan2csw/internal/output"
)

var configInitForce bool

// NewConfigInitCmd creates the config init command.
func NewConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Long: `Write the default configuration as YAML.

The file is written to --config, CKAN2CSW_CONFIG or ~/.ckan2csw/config.yaml,
in that order of precedence. Every key can still be overridden by flags and
environment variables.

Examples:
  # Initialize configuration
  ckan2csw config init

  # Overwrite existing configuration
  ckan2csw config init --force`,
		Args: cobra.NoArgs,
		RunE: runConfigInit,
	}

	cmd.Flags().BoolVarP(&configInitForce, "force", "f", false,
		"Overwrite existing configuration")

	return cmd
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFlag
	if path == "" {
		p, err := config.GetConfigFile()
		if err != nil {
			return exitError(oerrors.Wrap(oerrors.ErrNotFound, "could not determine home directory"))
		}
		path = p
	}
	path, err := config.ExpandPath(path)
	if err != nil {
		return exitError(err)
	}

	if _, err := os.Stat(path); err == nil && !configInitForce {
		return exitError(&oerrors.DetailError{
			Type:     "configuration invalid",
			Message:  "configuration already exists",
			Location: path,
			Hint:     "Use --force to overwrite existing configuration.",
			Cause:    oerrors.ErrConfig,
		})
	}

	data, err := config.DefaultConfig().ToYAML()
	if err != nil {
		return exitError(err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return exitError(fmt.Errorf("creating %s: %w", filepath.Dir(path), err))
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return exitError(fmt.Errorf("writing %s: %w", path, err))
	}

	fmt.Fprintln(cmd.OutOrStdout(), output.FormatCheckmark("Configuration written to "+path))
	fmt.Fprintln(cmd.OutOrStdout(), "Validate with: ckan2csw config vet")
	return nil
}
