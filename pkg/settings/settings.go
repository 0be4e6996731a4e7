// Package settings holds the configuration of the chatty client.
//
// The settings are exposed as a glazed parameter layer. Defaults live in the
// embedded layer definition; the config file, CHATTY_* environment variables
// and command line flags are layered on top by the command middlewares.
package settings

import (
	_ "embed"
	"time"

	"github.com/go-go-golems/chatty/pkg/security"
	"github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/middlewares"
	"github.com/huandu/go-clone"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed "flags/chatty.yaml"
var settingsYAML []byte

const ChattySlug = "chatty"

const (
	KeyBaseURL            = "base-url"
	KeyAllowHTTP          = "allow-http"
	KeyAllowLocalNetworks = "allow-local-networks"
	KeyRequestTimeout     = "request-timeout"
	KeyHTTPTimeout        = "http-timeout"
	KeyCopyWindow         = "copy-window"
	KeyQuickQuestions     = "quick-questions"
	KeyApologyText        = "apology-text"
)

type ParameterLayer struct {
	*layers.ParameterLayerImpl `yaml:",inline"`
}

func NewParameterLayer(options ...layers.ParameterLayerOptions) (*ParameterLayer, error) {
	ret, err := layers.NewParameterLayerFromYAML(settingsYAML, options...)
	if err != nil {
		return nil, err
	}

	return &ParameterLayer{
		ParameterLayerImpl: ret,
	}, nil
}

// Settings is the effective configuration. Zero timeouts are disabled.
type Settings struct {
	BaseURL            string `yaml:"base-url"`
	AllowHTTP          bool   `yaml:"allow-http"`
	AllowLocalNetworks bool   `yaml:"allow-local-networks"`

	RequestTimeout time.Duration `yaml:"request-timeout"`
	HTTPTimeout    time.Duration `yaml:"http-timeout"`
	CopyWindow     time.Duration `yaml:"copy-window"`

	QuickQuestions []string `yaml:"quick-questions"`
	ApologyText    string   `yaml:"apology-text"`
}

// layerValues mirrors the parameter layer. Durations are parsed afterwards.
type layerValues struct {
	BaseURL            string   `glazed.parameter:"base-url"`
	AllowHTTP          bool     `glazed.parameter:"allow-http"`
	AllowLocalNetworks bool     `glazed.parameter:"allow-local-networks"`
	RequestTimeout     string   `glazed.parameter:"request-timeout"`
	HTTPTimeout        string   `glazed.parameter:"http-timeout"`
	CopyWindow         string   `glazed.parameter:"copy-window"`
	QuickQuestions     []string `glazed.parameter:"quick-questions"`
	ApologyText        string   `glazed.parameter:"apology-text"`
}

func (v *layerValues) toSettings() (*Settings, error) {
	ret := &Settings{
		BaseURL:            v.BaseURL,
		AllowHTTP:          v.AllowHTTP,
		AllowLocalNetworks: v.AllowLocalNetworks,
		QuickQuestions:     v.QuickQuestions,
		ApologyText:        v.ApologyText,
	}

	durations := []struct {
		key   string
		value string
		dst   *time.Duration
	}{
		{KeyRequestTimeout, v.RequestTimeout, &ret.RequestTimeout},
		{KeyHTTPTimeout, v.HTTPTimeout, &ret.HTTPTimeout},
		{KeyCopyWindow, v.CopyWindow, &ret.CopyWindow},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s", d.key)
		}
		*d.dst = parsed
	}

	return ret, nil
}

// NewDefaultSettings returns the defaults declared by the parameter layer.
func NewDefaultSettings() (*Settings, error) {
	layer, err := NewParameterLayer()
	if err != nil {
		return nil, err
	}

	parsedLayers := layers.NewParsedLayers()
	err = middlewares.ExecuteMiddlewares(
		layers.NewParameterLayers(layers.WithLayers(layer)),
		parsedLayers,
		middlewares.SetFromDefaults(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "could not apply default settings")
	}

	v := &layerValues{}
	if err := parsedLayers.InitializeStruct(ChattySlug, v); err != nil {
		return nil, errors.Wrap(err, "could not decode default settings")
	}
	return v.toSettings()
}

// NewSettingsFromParsedLayers reads and validates the effective settings.
func NewSettingsFromParsedLayers(parsedLayers *layers.ParsedLayers) (*Settings, error) {
	v := &layerValues{}
	if err := parsedLayers.InitializeStruct(ChattySlug, v); err != nil {
		return nil, errors.Wrap(err, "could not initialize settings")
	}

	ret, err := v.toSettings()
	if err != nil {
		return nil, err
	}
	if err := ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}

// ConfigFileMapper maps a config file onto the chatty layer. The file is either
// flat or nests the settings under the layer slug.
func ConfigFileMapper(rawConfig interface{}) (map[string]map[string]interface{}, error) {
	configMap, ok := rawConfig.(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("expected map[string]interface{}, got %T", rawConfig)
	}

	if nested, ok := configMap[ChattySlug].(map[string]interface{}); ok {
		return map[string]map[string]interface{}{ChattySlug: nested}, nil
	}
	return map[string]map[string]interface{}{ChattySlug: configMap}, nil
}

func (s *Settings) Validate() error {
	if s.BaseURL == "" {
		return errors.Errorf("%s must be set", KeyBaseURL)
	}
	if s.RequestTimeout < 0 {
		return errors.Errorf("%s must not be negative", KeyRequestTimeout)
	}
	if s.HTTPTimeout < 0 {
		return errors.Errorf("%s must not be negative", KeyHTTPTimeout)
	}
	if s.CopyWindow <= 0 {
		return errors.Errorf("%s must be positive", KeyCopyWindow)
	}
	if s.ApologyText == "" {
		return errors.Errorf("%s must be set", KeyApologyText)
	}
	if err := security.ValidateOutboundURL(s.BaseURL, s.URLOptions()); err != nil {
		return errors.Wrapf(err, "invalid %s", KeyBaseURL)
	}
	return nil
}

func (s *Settings) URLOptions() security.OutboundURLOptions {
	return security.OutboundURLOptions{
		AllowHTTP:          s.AllowHTTP,
		AllowLocalNetworks: s.AllowLocalNetworks,
	}
}

func (s *Settings) Clone() *Settings {
	return clone.Clone(s).(*Settings)
}

// ToYAML encodes s as a flat config file that ConfigFileMapper reads back.
func (s *Settings) ToYAML() ([]byte, error) {
	b, err := yaml.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "could not encode settings")
	}
	return b, nil
}
