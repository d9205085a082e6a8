package cmd

import (
	"bytes"
	"path/filepath"
	"testing"
)

// isolate points configuration at an empty file and a fresh app directory so
// neither the user's home nor the host environment leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CKAN2CSW_CONFIG", filepath.Join(dir, "config.yaml"))
	t.Setenv("CKAN2CSW_APPDIR", filepath.Join(dir, "app"))
	for _, env := range []string{"CKAN_URL", "PYCSW_URL", "CKAN_SCHEMA", "PYCSW_OUTPUT_SCHEMA", "APP_DIR", "TZ",
		"PYCSW_CRON_DAYS_INTERVAL", "PYCSW_CRON_HOUR_START"} {
		t.Setenv(env, "")
	}
	return dir
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append(args, "--timestamps=false"))
	err := root.Execute()
	return out.String(), err
}
