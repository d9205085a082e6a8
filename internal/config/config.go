// Package config provides configuration loading and management.
package config

import (
	"path/filepath"

	"sigs.k8s.io/yaml"
)

// CronConfig controls the recurring harvest.
type CronConfig struct {
	// DaysInterval is the number of days between runs.
	// Env: CKAN2CSW_CRON_DAYSINTERVAL, Default: 3
	DaysInterval int `json:"daysInterval" mapstructure:"daysInterval"`

	// HourStart is the hour of day (0-23) at which a run starts.
	// Env: CKAN2CSW_CRON_HOURSTART, Default: 4
	HourStart int `json:"hourStart" mapstructure:"hourStart"`

	// Timezone is an IANA location name. Empty means the local zone.
	// Env: CKAN2CSW_CRON_TIMEZONE, TZ
	Timezone string `json:"timezone,omitempty" mapstructure:"timezone"`
}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `json:"timestamps,omitempty" mapstructure:"timestamps"`

	// Dir receives one log file per run. Empty disables file logging.
	Dir string `json:"dir,omitempty" mapstructure:"dir"`

	// Keep is the number of run log files retained in Dir.
	Keep int `json:"keep" mapstructure:"keep"`
}

// Config represents the ckan2csw configuration.
type Config struct {
	// CKANURL is the base URL of the source catalog.
	// Env: CKAN2CSW_CKANURL, CKAN_URL
	CKANURL string `json:"ckanURL" mapstructure:"ckanURL"`

	// CSWURL is the public base URL of the catalogue service the documents
	// are published through.
	// Env: CKAN2CSW_CSWURL, PYCSW_URL
	CSWURL string `json:"cswURL" mapstructure:"cswURL"`

	// CKANSchema is the source profile used to build canonical models.
	CKANSchema string `json:"ckanSchema" mapstructure:"ckanSchema"`

	// OutputSchema is the document profile records are written in.
	OutputSchema string `json:"outputSchema" mapstructure:"outputSchema"`

	// TemplatesDir overrides the embedded templates. Empty uses the defaults.
	TemplatesDir string `json:"templatesDir,omitempty" mapstructure:"templatesDir"`

	// MappingsDir overrides the embedded codelists. Empty uses the defaults.
	MappingsDir string `json:"mappingsDir,omitempty" mapstructure:"mappingsDir"`

	// CacheCodelists keeps codelist tables in memory during a run.
	CacheCodelists bool `json:"cacheCodelists" mapstructure:"cacheCodelists"`

	// AppDir is the working directory for the index, exports and logs.
	AppDir string `json:"appDir" mapstructure:"appDir"`

	// Database is the path of the sqlite metadata index.
	Database string `json:"database,omitempty" mapstructure:"database"`

	// ExportDir receives one XML file per indexed record.
	ExportDir string `json:"exportDir,omitempty" mapstructure:"exportDir"`

	// PageSize is the number of records requested per catalog page.
	PageSize int `json:"pageSize" mapstructure:"pageSize"`

	// Workers bounds concurrent export writes.
	Workers int `json:"workers" mapstructure:"workers"`

	// Cron controls the schedule of `ckan2csw serve`.
	Cron CronConfig `json:"cron" mapstructure:"cron"`

	// Log contains logging-related settings.
	Log LogConfig `json:"log" mapstructure:"log"`
}

// Defaults.
const (
	DefaultCKANURL      = "http://localhost:5000/"
	DefaultCSWURL       = "http://localhost:8000/"
	DefaultCKANSchema   = "iso19139_geodcatap"
	DefaultOutputSchema = "iso19139_inspire"
	DefaultAppDir       = "/app"
	DefaultPageSize     = 10
	DefaultWorkers      = 4
	DefaultDaysInterval = 3
	DefaultHourStart    = 4
	DefaultLogKeep      = 10
)

// DefaultConfig returns a Config with all default values populated.
// Used by `ckan2csw config init` to generate the initial config file.
func DefaultConfig() *Config {
	return &Config{
		CKANURL:      DefaultCKANURL,
		CSWURL:       DefaultCSWURL,
		CKANSchema:   DefaultCKANSchema,
		OutputSchema: DefaultOutputSchema,
		AppDir:       DefaultAppDir,
		PageSize:     DefaultPageSize,
		Workers:      DefaultWorkers,
		Cron: CronConfig{
			DaysInterval: DefaultDaysInterval,
			HourStart:    DefaultHourStart,
		},
		Log: LogConfig{
			Keep: DefaultLogKeep,
		},
	}
}

// WithDefaults fills the paths derived from AppDir when they are unset.
func (c *Config) WithDefaults() *Config {
	out := *c
	if out.AppDir == "" {
		out.AppDir = DefaultAppDir
	}
	if out.Database == "" {
		out.Database = filepath.Join(out.AppDir, "cite.db")
	}
	if out.ExportDir == "" {
		out.ExportDir = filepath.Join(out.AppDir, "metadata")
	}
	if out.Log.Dir == "" {
		out.Log.Dir = filepath.Join(out.AppDir, "log")
	}
	return &out
}

// ToYAML renders the configuration as a YAML document.
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}
