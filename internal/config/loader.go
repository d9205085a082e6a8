package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Environment variable prefix for ckan2csw configuration.
const envPrefix = "CKAN2CSW"

// binding ties a config key to its default and the environment variables
// read for it, first set wins. The unprefixed names are the variables the
// container images have always used.
type binding struct {
	key  string
	def  any
	envs []string
}

var bindings = []binding{
	{key: "ckanURL", def: DefaultCKANURL, envs: []string{"CKAN2CSW_CKANURL", "CKAN_URL"}},
	{key: "cswURL", def: DefaultCSWURL, envs: []string{"CKAN2CSW_CSWURL", "PYCSW_URL"}},
	{key: "ckanSchema", def: DefaultCKANSchema, envs: []string{"CKAN2CSW_CKANSCHEMA", "CKAN_SCHEMA"}},
	{key: "outputSchema", def: DefaultOutputSchema, envs: []string{"CKAN2CSW_OUTPUTSCHEMA", "PYCSW_OUTPUT_SCHEMA"}},
	{key: "templatesDir", def: "", envs: []string{"CKAN2CSW_TEMPLATESDIR"}},
	{key: "mappingsDir", def: "", envs: []string{"CKAN2CSW_MAPPINGSDIR"}},
	{key: "cacheCodelists", def: false, envs: []string{"CKAN2CSW_CACHECODELISTS"}},
	{key: "appDir", def: DefaultAppDir, envs: []string{"CKAN2CSW_APPDIR", "APP_DIR"}},
	{key: "database", def: "", envs: []string{"CKAN2CSW_DATABASE"}},
	{key: "exportDir", def: "", envs: []string{"CKAN2CSW_EXPORTDIR"}},
	{key: "pageSize", def: DefaultPageSize, envs: []string{"CKAN2CSW_PAGESIZE"}},
	{key: "workers", def: DefaultWorkers, envs: []string{"CKAN2CSW_WORKERS"}},
	{key: "cron.daysInterval", def: DefaultDaysInterval, envs: []string{"CKAN2CSW_CRON_DAYSINTERVAL", "PYCSW_CRON_DAYS_INTERVAL"}},
	{key: "cron.hourStart", def: DefaultHourStart, envs: []string{"CKAN2CSW_CRON_HOURSTART", "PYCSW_CRON_HOUR_START"}},
	{key: "cron.timezone", def: "", envs: []string{"CKAN2CSW_CRON_TIMEZONE", "TZ"}},
	{key: "log.dir", def: "", envs: []string{"CKAN2CSW_LOG_DIR"}},
	{key: "log.keep", def: DefaultLogKeep, envs: []string{"CKAN2CSW_LOG_KEEP"}},
	{key: "log.timestamps", def: nil, envs: []string{"CKAN2CSW_LOG_TIMESTAMPS"}},
}

// Loader handles loading and merging configuration from multiple sources.
type Loader struct {
	v     *viper.Viper
	flags map[string]*pflag.Flag
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()

	// Set up environment variable bindings
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, b := range bindings {
		if b.def != nil {
			v.SetDefault(b.key, b.def)
		}
		_ = v.BindEnv(append([]string{b.key}, b.envs...)...)
	}

	return &Loader{v: v, flags: make(map[string]*pflag.Flag)}
}

// BindFlag makes flag the highest-precedence source for key.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("binding %s: nil flag", key)
	}
	l.flags[key] = flag
	return l.v.BindPFlag(key, flag)
}

// Load loads configuration from the given file path.
// If configFile is empty, it uses the default config file path.
// Environment variables take precedence over file values.
func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile == "" {
		var err error
		configFile, err = GetConfigFile()
		if err != nil {
			return nil, fmt.Errorf("getting config file path: %w", err)
		}
	}

	// Expand ~ in path
	expandedPath, err := ExpandPath(configFile)
	if err != nil {
		return nil, fmt.Errorf("expanding config path: %w", err)
	}

	l.v.SetConfigFile(expandedPath)
	l.v.SetConfigType("yaml")

	// A missing file is fine: defaults and env vars apply.
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads configuration and applies defaults.
func (l *Loader) LoadWithDefaults(configFile string) (*Config, error) {
	cfg, err := l.Load(configFile)
	if err != nil {
		return nil, err
	}

	return cfg.WithDefaults(), nil
}

// Source reports where the effective value of key came from.
func (l *Loader) Source(key string) ConfigSource {
	if f, ok := l.flags[key]; ok && f.Changed {
		return SourceFlag
	}
	for _, b := range bindings {
		if b.key != key {
			continue
		}
		for _, env := range b.envs {
			if os.Getenv(env) != "" {
				return SourceEnv
			}
		}
	}
	if l.v.InConfig(key) {
		return SourceConfig
	}
	return SourceDefault
}

// Resolved returns every known key with its effective value and source.
func (l *Loader) Resolved() []ResolvedValue {
	out := make([]ResolvedValue, 0, len(bindings))
	for _, b := range bindings {
		out = append(out, ResolvedValue{
			Key:    b.key,
			Value:  l.v.Get(b.key),
			Source: l.Source(b.key),
		})
	}
	return out
}

// ConfigFileExists checks if the config file exists.
func ConfigFileExists(configFile string) (bool, error) {
	if configFile == "" {
		var err error
		configFile, err = GetConfigFile()
		if err != nil {
			return false, err
		}
	}

	expandedPath, err := ExpandPath(configFile)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(expandedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
