package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{
		"PIXDEDUP_SCAN_DIR",
		"PIXDEDUP_RECURSIVE",
		"PIXDEDUP_STRICT_EXTENSIONS",
		"PIXDEDUP_FINGERPRINT",
		"PIXDEDUP_DRY_RUN",
		"PIXDEDUP_ON_DELETE_FAILURE",
		"PIXDEDUP_MAX_ATTEMPTS",
		"PIXDEDUP_LOCK_ENABLED",
		"PIXDEDUP_LOCK_DIR",
		"PIXDEDUP_LOG_LEVEL",
		"PIXDEDUP_LOG_FILE",
	} {
		t.Setenv(key, "")
	}
	return home
}

func TestLoadPrecedence(t *testing.T) {
	home := isolateHome(t)

	configPath := filepath.Join(home, "pixdedup.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
scan:
  directory: /from/file
  recursive: true
fingerprint:
  algorithm: perception
logging:
  level: warn
`), 0644))

	t.Setenv("PIXDEDUP_FINGERPRINT", "difference")
	t.Setenv("PIXDEDUP_LOG_LEVEL", "debug")

	cfg, err := Load(configPath, map[string]interface{}{
		"log-level": "error",
	})
	require.NoError(t, err)

	// file
	assert.Equal(t, "/from/file", cfg.Scan.Directory)
	assert.True(t, cfg.Scan.Recursive)
	// env over file
	assert.Equal(t, "difference", cfg.Fingerprint.Algorithm)
	// flags over env
	assert.Equal(t, "error", cfg.Logging.Level)
	// untouched defaults
	assert.Equal(t, OnFailureFail, cfg.Deletion.OnFailure)
	assert.True(t, cfg.Lock.Enabled)
}

func TestLoadFromDotEnv(t *testing.T) {
	home := isolateHome(t)
	require.NoError(t, os.WriteFile(
		filepath.Join(home, ".pixdedup.env"),
		[]byte("PIXDEDUP_SCAN_DIR=/from/dotenv\nPIXDEDUP_ON_DELETE_FAILURE=skip\n"),
		0644,
	))
	// godotenv never overrides variables that are already set, even empty ones
	require.NoError(t, os.Unsetenv("PIXDEDUP_SCAN_DIR"))
	require.NoError(t, os.Unsetenv("PIXDEDUP_ON_DELETE_FAILURE"))
	t.Cleanup(func() {
		os.Unsetenv("PIXDEDUP_SCAN_DIR")
		os.Unsetenv("PIXDEDUP_ON_DELETE_FAILURE")
	})

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "/from/dotenv", cfg.Scan.Directory)
	assert.Equal(t, OnFailureSkip, cfg.Deletion.OnFailure)
}

func TestLoadRequiresScanDirectory(t *testing.T) {
	isolateHome(t)

	_, err := Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan directory is required")
}

func TestLoadReportsAllValidationErrors(t *testing.T) {
	isolateHome(t)

	_, err := Load("", map[string]interface{}{
		"fingerprint": "wavelet",
		"on-failure":  "shrug",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan directory is required")
	assert.Contains(t, err.Error(), `unknown fingerprint algorithm "wavelet"`)
	assert.Contains(t, err.Error(), `unknown deletion failure policy "shrug"`)
}

func TestLoadFromMissingFile(t *testing.T) {
	isolateHome(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), map[string]interface{}{"scan-dir": "/x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadFromFileRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan: [unterminated"), 0644))

	err := DefaultConfig().LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestMergeCommandLineFlagsIgnoresAbsentKeys(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scan.Directory = "/kept"

	cfg.MergeCommandLineFlags(map[string]interface{}{})

	assert.Equal(t, "/kept", cfg.Scan.Directory)
	assert.True(t, cfg.Lock.Enabled)
	assert.False(t, cfg.Deletion.DryRun)
}

func TestResolveSkipsValidation(t *testing.T) {
	isolateHome(t)

	cfg, err := Resolve("", map[string]interface{}{"fingerprint": "wavelet"})
	require.NoError(t, err)
	assert.Empty(t, cfg.Scan.Directory)
	assert.Equal(t, "wavelet", cfg.Fingerprint.Algorithm)
	assert.Error(t, cfg.Validate())
}
