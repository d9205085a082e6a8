package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:5000/", cfg.CKANURL)
	assert.Equal(t, "iso19139_geodcatap", cfg.CKANSchema)
	assert.Equal(t, "iso19139_inspire", cfg.OutputSchema)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 3, cfg.Cron.DaysInterval)
	assert.Equal(t, 4, cfg.Cron.HourStart)
	assert.Equal(t, 10, cfg.Log.Keep)
	assert.False(t, cfg.CacheCodelists)
	assert.Nil(t, cfg.Log.Timestamps)
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := (&Config{AppDir: "/srv/harvest"}).WithDefaults()

	assert.Equal(t, filepath.Join("/srv/harvest", "cite.db"), cfg.Database)
	assert.Equal(t, filepath.Join("/srv/harvest", "metadata"), cfg.ExportDir)
	assert.Equal(t, filepath.Join("/srv/harvest", "log"), cfg.Log.Dir)

	explicit := (&Config{Database: "/tmp/x.db"}).WithDefaults()
	assert.Equal(t, "/tmp/x.db", explicit.Database)
	assert.Equal(t, DefaultAppDir, explicit.AppDir)
}

func TestConfig_ToYAML(t *testing.T) {
	data, err := DefaultConfig().ToYAML()
	require.NoError(t, err)

	var back Config
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, *DefaultConfig(), back)
	assert.Contains(t, string(data), "ckanURL: http://localhost:5000/")
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "/abs/path", want: "/abs/path"},
		{in: "~", want: home},
		{in: "~/cfg.yaml", want: filepath.Join(home, "cfg.yaml")},
		{in: "~other/x", want: "~other/x"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ExpandPath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetConfigFile_Env(t *testing.T) {
	t.Setenv("CKAN2CSW_CONFIG", "/etc/ckan2csw.yaml")

	got, err := GetConfigFile()
	require.NoError(t, err)
	assert.Equal(t, "/etc/ckan2csw.yaml", got)
}

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	cfg := (&Config{AppDir: filepath.Join(root, "app")}).WithDefaults()

	require.NoError(t, EnsureDirs(cfg))
	assert.DirExists(t, cfg.AppDir)
	assert.DirExists(t, cfg.ExportDir)
}
