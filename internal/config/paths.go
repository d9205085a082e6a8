package config

import (
	"os"
	"path/filepath"
)

// envConfig overrides the default config file location.
const envConfig = "CKAN2CSW_CONFIG"

// Paths contains standard filesystem paths for ckan2csw.
type Paths struct {
	// ConfigFile is the path to the config file (~/.ckan2csw/config.yaml).
	ConfigFile string

	// HomeDir is the ckan2csw home directory (~/.ckan2csw).
	HomeDir string
}

// DefaultPaths returns the default paths for ckan2csw.
func DefaultPaths() (*Paths, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	home := filepath.Join(homeDir, ".ckan2csw")

	return &Paths{
		ConfigFile: filepath.Join(home, "config.yaml"),
		HomeDir:    home,
	}, nil
}

// GetConfigFile returns the config file path.
// If CKAN2CSW_CONFIG is set, it takes precedence.
func GetConfigFile() (string, error) {
	if envPath := os.Getenv(envConfig); envPath != "" {
		return envPath, nil
	}

	paths, err := DefaultPaths()
	if err != nil {
		return "", err
	}

	return paths.ConfigFile, nil
}

// EnsureDirs creates the working directories of cfg.
func EnsureDirs(cfg *Config) error {
	for _, dir := range []string{cfg.AppDir, cfg.ExportDir, filepath.Dir(cfg.Database)} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) == 0 {
		return path, nil
	}

	if path[0] != '~' {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if len(path) == 1 {
		return homeDir, nil
	}

	// Handle ~/path/to/something
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:]), nil
	}

	// Handle ~username (not supported, return as-is)
	return path, nil
}
