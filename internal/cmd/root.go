package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/catalogbridge/ckan2csw/internal/config"
	"github.com/catalogbridge/ckan2csw/internal/output"
	"github.com/catalogbridge/ckan2csw/internal/version"
)

var (
	// Global flags
	configFlag     string
	verboseFlag    bool
	timestampsFlag bool

	// Loaded during PersistentPreRunE
	loader *config.Loader
	cfg    *config.Config
)

// flagKeys maps persistent flags to the config keys they override.
var flagKeys = map[string]string{
	"ckan-url":      "ckanURL",
	"ckan-schema":   "ckanSchema",
	"output-schema": "outputSchema",
	"templates-dir": "templatesDir",
	"mappings-dir":  "mappingsDir",
	"app-dir":       "appDir",
}

// NewRootCmd creates the root command for the ckan2csw CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ckan2csw",
		Short: "Publish CKAN catalog records as ISO19139 metadata",
		Long: `ckan2csw harvests dataset records from a CKAN catalog, normalizes them into
a canonical metadata model and writes standardized ISO19139 documents into a
metadata index that a catalogue service publishes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeGlobals(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFlag, "config", "", "Path to config file (env: CKAN2CSW_CONFIG)")
	pf.BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
	pf.BoolVar(&timestampsFlag, "timestamps", true, "Show timestamps in log output")
	pf.String("ckan-url", "", "Base URL of the source catalog (env: CKAN_URL)")
	pf.String("ckan-schema", "", "Source-to-canonical template profile (env: CKAN_SCHEMA)")
	pf.String("output-schema", "", "Output document schema (env: PYCSW_OUTPUT_SCHEMA)")
	pf.String("templates-dir", "", "Directory overriding the embedded templates")
	pf.String("mappings-dir", "", "Directory overriding the embedded codelists")
	pf.String("app-dir", "", "Working directory for the index, exports and logs (env: APP_DIR)")

	loader = config.NewLoader()
	for name, key := range flagKeys {
		_ = loader.BindFlag(key, pf.Lookup(name))
	}

	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewRenderCmd())
	rootCmd.AddCommand(NewRoundtripCmd())
	rootCmd.AddCommand(NewExportCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// initializeGlobals loads configuration and sets up logging.
func initializeGlobals(cmd *cobra.Command) error {
	loaded, err := loader.LoadWithDefaults(configFlag)
	if err != nil {
		return NewExitError(fmt.Errorf("loading configuration: %w", err), ExitConfigError)
	}
	cfg = loaded

	// Timestamps: flag (if explicitly set) > config > default (nil = true)
	logCfg := output.LogConfig{Verbose: verboseFlag}
	if cmd.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(timestampsFlag)
	} else if cfg.Log.Timestamps != nil {
		logCfg.Timestamps = cfg.Log.Timestamps
	}
	output.SetupLogging(logCfg)

	info := version.Get()
	output.Debug("ckan2csw started", "version", info.Version, "cue_sdk", info.CUESDKVersion)
	if verboseFlag {
		config.LogResolvedValues(loader.Resolved())
	}

	return nil
}

// startRunLog tees the log into a new file under the configured log
// directory. The returned func restores stderr-only logging.
func startRunLog() (func(), error) {
	f, err := output.OpenRunLog(cfg.Log.Dir, cfg.Log.Keep)
	if err != nil {
		return func() {}, err
	}

	logCfg := output.LogConfig{Verbose: verboseFlag, Timestamps: cfg.Log.Timestamps, File: f}
	output.SetupLogging(logCfg)
	output.Debug("run log opened", "path", f.Name())

	return func() {
		logCfg.File = nil
		output.SetupLogging(logCfg)
		f.Close()
	}, nil
}
