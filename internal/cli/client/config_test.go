package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useConfigDir points the config lookups at dir for the duration of the test.
func useConfigDir(t *testing.T, dir string) string {
	t.Helper()
	configPath := filepath.Join(dir, "config.json")

	oldDir, oldPath := getConfigDirFunc, getConfigPathFunc
	getConfigDirFunc = func() (string, error) { return dir, nil }
	getConfigPathFunc = func() (string, error) { return configPath, nil }
	t.Cleanup(func() {
		getConfigDirFunc, getConfigPathFunc = oldDir, oldPath
	})
	return configPath
}

func TestGetConfigDir(t *testing.T) {
	dir, err := GetConfigDir()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(dir))
	assert.True(t, strings.HasSuffix(dir, "meetingctl"))
}

func TestGetConfigPath(t *testing.T) {
	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, filepath.Join("meetingctl", "config.json")))
}

func TestLoadGlobalConfig_FileNotExists(t *testing.T) {
	useConfigDir(t, t.TempDir())

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Nil(t, config)
}

func TestLoadGlobalConfig_ValidFile(t *testing.T) {
	configPath := useConfigDir(t, t.TempDir())
	require.NoError(t, os.WriteFile(configPath, []byte(`{"api_token":"secret","api_url":"http://meetings:8080"}`), 0600))

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	require.NotNil(t, config)
	assert.Equal(t, "secret", config.APIToken)
	assert.Equal(t, "http://meetings:8080", config.APIURL)
}

func TestLoadGlobalConfig_InvalidJSON(t *testing.T) {
	configPath := useConfigDir(t, t.TempDir())
	require.NoError(t, os.WriteFile(configPath, []byte("{invalid json}"), 0600))

	config, err := LoadGlobalConfig()
	assert.Nil(t, config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestSaveGlobalConfig_CreatesDirectoryWithPrivateFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "meetingctl")
	configPath := useConfigDir(t, dir)

	err := SaveGlobalConfig(&GlobalConfig{APIToken: "secret", APIURL: "http://localhost:8080"})
	require.NoError(t, err)

	assert.DirExists(t, dir)
	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	var raw map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "secret", raw["api_token"])
}

func TestSaveGlobalConfig_NilConfig(t *testing.T) {
	err := SaveGlobalConfig(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config cannot be nil")
}

func TestSaveAndLoad_OmitsEmptyToken(t *testing.T) {
	configPath := useConfigDir(t, t.TempDir())

	require.NoError(t, SaveGlobalConfig(&GlobalConfig{APIURL: "http://localhost:9090"}))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "api_token")

	loaded, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Equal(t, &GlobalConfig{APIURL: "http://localhost:9090"}, loaded)
}

func TestDeleteGlobalConfig(t *testing.T) {
	configPath := useConfigDir(t, t.TempDir())
	require.NoError(t, os.WriteFile(configPath, []byte("{}"), 0600))

	require.NoError(t, DeleteGlobalConfig())
	assert.NoFileExists(t, configPath)

	// a second delete is a no-op
	require.NoError(t, DeleteGlobalConfig())
}

func TestResolveAPIURL(t *testing.T) {
	configPath := useConfigDir(t, t.TempDir())

	t.Run("default", func(t *testing.T) {
		t.Setenv(envAPIURL, "")
		source, url := ResolveAPIURL("")
		assert.Equal(t, SourceDefault, source)
		assert.Equal(t, defaultAPIURL, url)
	})

	t.Run("global config", func(t *testing.T) {
		t.Setenv(envAPIURL, "")
		require.NoError(t, os.WriteFile(configPath, []byte(`{"api_url":"http://global:8080"}`), 0600))
		t.Cleanup(func() { _ = os.Remove(configPath) })

		source, url := ResolveAPIURL("")
		assert.Equal(t, SourceGlobalConfig, source)
		assert.Equal(t, "http://global:8080", url)
	})

	t.Run("env overrides global config", func(t *testing.T) {
		t.Setenv(envAPIURL, "http://env:8080")
		require.NoError(t, os.WriteFile(configPath, []byte(`{"api_url":"http://global:8080"}`), 0600))
		t.Cleanup(func() { _ = os.Remove(configPath) })

		source, url := ResolveAPIURL("")
		assert.Equal(t, SourceEnv, source)
		assert.Equal(t, "http://env:8080", url)
	})

	t.Run("flag wins", func(t *testing.T) {
		t.Setenv(envAPIURL, "http://env:8080")
		source, url := ResolveAPIURL("http://flag:8080")
		assert.Equal(t, SourceFlag, source)
		assert.Equal(t, "http://flag:8080", url)
	})
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"", "(none)"},
		{"abc", "****"},
		{"supersecret1234", "****1234"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskToken(tt.token))
		})
	}
}
