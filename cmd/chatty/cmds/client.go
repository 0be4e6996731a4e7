package cmds

import (
	"net/http"

	"github.com/go-go-golems/chatty/pkg/answering"
	"github.com/go-go-golems/chatty/pkg/session"
	"github.com/go-go-golems/chatty/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/pkg/errors"
)

// Version is reported in the User-Agent header.
var Version = "dev"

func loadSettings(parsedLayers *layers.ParsedLayers) (*settings.Settings, error) {
	s, err := settings.NewSettingsFromParsedLayers(parsedLayers)
	if err != nil {
		return nil, errors.Wrap(err, "could not load settings")
	}
	return s, nil
}

func newClient(s *settings.Settings) (*answering.Client, error) {
	return answering.NewClient(
		s.BaseURL,
		answering.WithHTTPClient(&http.Client{Timeout: s.HTTPTimeout}),
		answering.WithURLOptions(s.URLOptions()),
		answering.WithUserAgent("chatty/"+Version),
	)
}

func sessionOptions(s *settings.Settings) []session.Option {
	return []session.Option{
		session.WithRequestTimeout(s.RequestTimeout),
		session.WithApologyText(s.ApologyText),
		session.WithQuickQuestions(s.QuickQuestions),
	}
}
