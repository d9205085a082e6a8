package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/catalogbridge/ckan2csw/internal/errors"
)

func TestValidator_Validate(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "bad catalog URL", mutate: func(c *Config) { c.CKANURL = "ftp://x" }, wantErr: "ckanURL"},
		{name: "zero page size", mutate: func(c *Config) { c.PageSize = 0 }, wantErr: "pageSize"},
		{name: "hour out of range", mutate: func(c *Config) { c.Cron.HourStart = 24 }, wantErr: "cron.hourStart"},
		{name: "zero interval", mutate: func(c *Config) { c.Cron.DaysInterval = 0 }, wantErr: "cron.daysInterval"},
		{name: "empty output schema", mutate: func(c *Config) { c.OutputSchema = "" }, wantErr: "outputSchema"},
		{name: "unknown timezone", mutate: func(c *Config) { c.Cron.Timezone = "Mars/Olympus" }, wantErr: "cron.timezone"},
		{name: "missing templates dir", mutate: func(c *Config) { c.TemplatesDir = "/does/not/exist" }, wantErr: "templatesDir"},
		{name: "timezone ok", mutate: func(c *Config) { c.Cron.Timezone = "UTC" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig().WithDefaults()
			tt.mutate(cfg)

			err := v.Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, oerrors.ErrConfig))

			var detail *oerrors.DetailError
			require.True(t, errors.As(err, &detail))
			assert.Contains(t, detail.Context, tt.wantErr)
		})
	}
}

func TestValidator_ValidateFile(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	assert.NoError(t, v.ValidateFile(writeConfig(t, "pageSize: 20\n")))

	err = v.ValidateFile(writeConfig(t, "pageSize: -1\n"))
	assert.True(t, errors.Is(err, oerrors.ErrConfig))

	err = v.ValidateFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, oerrors.ErrNotFound))
}
