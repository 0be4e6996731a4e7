package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/middlewares"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultSettings(t *testing.T) {
	s, err := NewDefaultSettings()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", s.BaseURL)
	assert.True(t, s.AllowHTTP)
	assert.True(t, s.AllowLocalNetworks)
	assert.Equal(t, time.Duration(0), s.RequestTimeout)
	assert.Equal(t, 2*time.Second, s.CopyWindow)
	assert.Len(t, s.QuickQuestions, 6)
	assert.Equal(t, "Sorry, I encountered an error. Please try again.", s.ApologyText)
	assert.NoError(t, s.Validate())
}

func parseSettings(t *testing.T, mws ...middlewares.Middleware) (*Settings, error) {
	t.Helper()
	layer, err := NewParameterLayer()
	require.NoError(t, err)

	parsedLayers := layers.NewParsedLayers()
	mws = append(mws, middlewares.SetFromDefaults())
	require.NoError(t, middlewares.ExecuteMiddlewares(
		layers.NewParameterLayers(layers.WithLayers(layer)),
		parsedLayers,
		mws...,
	))
	return NewSettingsFromParsedLayers(parsedLayers)
}

func fromMap(values map[string]interface{}) middlewares.Middleware {
	return middlewares.UpdateFromMap(map[string]map[string]interface{}{ChattySlug: values})
}

func TestNewSettingsFromParsedLayersUsesDefaults(t *testing.T) {
	s, err := parseSettings(t)
	require.NoError(t, err)

	d, err := NewDefaultSettings()
	require.NoError(t, err)
	assert.Equal(t, d, s)
}

func TestNewSettingsFromParsedLayersOverrides(t *testing.T) {
	s, err := parseSettings(t, fromMap(map[string]interface{}{
		KeyBaseURL:        "https://answers.example.com",
		KeyRequestTimeout: "30s",
		KeyCopyWindow:     "500ms",
		KeyQuickQuestions: []string{"a", "b"},
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://answers.example.com", s.BaseURL)
	assert.Equal(t, 30*time.Second, s.RequestTimeout)
	assert.Equal(t, 500*time.Millisecond, s.CopyWindow)
	assert.Equal(t, []string{"a", "b"}, s.QuickQuestions)
}

func TestNewSettingsFromParsedLayersRejectsBadDuration(t *testing.T) {
	_, err := parseSettings(t, fromMap(map[string]interface{}{
		KeyCopyWindow: "soon",
	}))
	assert.Error(t, err)

	_, err = parseSettings(t, fromMap(map[string]interface{}{
		KeyCopyWindow: "0s",
	}))
	assert.Error(t, err)
}

func TestConfigFileMapper(t *testing.T) {
	flat, err := ConfigFileMapper(map[string]interface{}{"base-url": "https://a.example.com"})
	require.NoError(t, err)
	assert.Equal(t, "https://a.example.com", flat[ChattySlug]["base-url"])

	nested, err := ConfigFileMapper(map[string]interface{}{
		"chatty": map[string]interface{}{"base-url": "https://b.example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://b.example.com", nested[ChattySlug]["base-url"])

	_, err = ConfigFileMapper([]interface{}{"x"})
	assert.Error(t, err)
}

func TestConfigFileIsLoaded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base-url: https://chat.example.org\ncopy-window: 5s\n"), 0o600))

	s, err := parseSettings(t, middlewares.LoadParametersFromFiles(
		[]string{path},
		middlewares.WithConfigFileMapper(ConfigFileMapper),
	))
	require.NoError(t, err)
	assert.Equal(t, "https://chat.example.org", s.BaseURL)
	assert.Equal(t, 5*time.Second, s.CopyWindow)
}

func TestValidateRejectsBadSettings(t *testing.T) {
	tcs := []struct {
		name   string
		modify func(s *Settings)
	}{
		{"empty base url", func(s *Settings) { s.BaseURL = "" }},
		{"bad scheme", func(s *Settings) { s.BaseURL = "ftp://example.com" }},
		{"http not allowed", func(s *Settings) { s.AllowHTTP = false }},
		{"negative request timeout", func(s *Settings) { s.RequestTimeout = -time.Second }},
		{"negative http timeout", func(s *Settings) { s.HTTPTimeout = -time.Second }},
		{"zero copy window", func(s *Settings) { s.CopyWindow = 0 }},
		{"empty apology", func(s *Settings) { s.ApologyText = "" }},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewDefaultSettings()
			require.NoError(t, err)
			tc.modify(s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	s, err := NewDefaultSettings()
	require.NoError(t, err)

	c := s.Clone()
	c.QuickQuestions[0] = "changed"
	c.BaseURL = "https://other.example.com"

	assert.Equal(t, "What is machine learning?", s.QuickQuestions[0])
	assert.Equal(t, "http://localhost:8000", s.BaseURL)
}

func TestToYAMLIsAConfigFile(t *testing.T) {
	s, err := NewDefaultSettings()
	require.NoError(t, err)
	s.BaseURL = "https://saved.example.com"

	b, err := s.ToYAML()
	require.NoError(t, err)
	assert.Contains(t, string(b), "base-url: https://saved.example.com")
	assert.Contains(t, string(b), "copy-window: 2s")

	decoded := &Settings{}
	require.NoError(t, yaml.Unmarshal(b, decoded))
	assert.Equal(t, s, decoded)

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, os.WriteFile(path, b, 0o600))
	loaded, err := parseSettings(t, middlewares.LoadParametersFromFiles(
		[]string{path},
		middlewares.WithConfigFileMapper(ConfigFileMapper),
	))
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}
