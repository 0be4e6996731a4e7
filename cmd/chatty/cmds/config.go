package cmds

import (
	"context"
	"os"

	"github.com/go-go-golems/chatty/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	"github.com/go-go-golems/glazed/pkg/middlewares"
	glazedsettings "github.com/go-go-golems/glazed/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type ConfigCommand struct {
	*cmds.CommandDescription
}

var _ cmds.GlazeCommand = (*ConfigCommand)(nil)

type ConfigSettings struct {
	Save string `glazed.parameter:"save"`
}

func NewConfigCommand() (*ConfigCommand, error) {
	glazedParameterLayer, err := glazedsettings.NewGlazedParameterLayers()
	if err != nil {
		return nil, errors.Wrap(err, "could not create glazed parameter layer")
	}
	chattyLayer, err := settings.NewParameterLayer()
	if err != nil {
		return nil, errors.Wrap(err, "could not create chatty parameter layer")
	}

	return &ConfigCommand{
		CommandDescription: cmds.NewCommandDescription(
			"config",
			cmds.WithShort("Print the effective configuration"),
			cmds.WithLong("Print the effective configuration. With --save, also write it as a config file."),
			cmds.WithFlags(
				parameters.NewParameterDefinition(
					"save",
					parameters.ParameterTypeString,
					parameters.WithHelp("Write the effective configuration to this file"),
					parameters.WithDefault(""),
				),
			),
			cmds.WithLayersList(glazedParameterLayer, chattyLayer),
		),
	}, nil
}

func (c *ConfigCommand) RunIntoGlazeProcessor(ctx context.Context, parsedLayers *layers.ParsedLayers, gp middlewares.Processor) error {
	cs := &ConfigSettings{}
	if err := parsedLayers.InitializeStruct(layers.DefaultSlug, cs); err != nil {
		return errors.Wrap(err, "could not initialize config settings")
	}

	s, err := loadSettings(parsedLayers)
	if err != nil {
		return err
	}

	if cs.Save != "" {
		if err := saveSettings(cs.Save, s); err != nil {
			return err
		}
		log.Info().Str("path", cs.Save).Msg("Saved configuration")
	}

	return gp.AddRow(ctx, settingsRow(s))
}

func saveSettings(path string, s *settings.Settings) error {
	b, err := s.Clone().ToYAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return errors.Wrapf(err, "could not write %s", path)
	}
	return nil
}

func settingsRow(s *settings.Settings) types.Row {
	return types.NewRow(
		types.MRP(settings.KeyBaseURL, s.BaseURL),
		types.MRP(settings.KeyAllowHTTP, s.AllowHTTP),
		types.MRP(settings.KeyAllowLocalNetworks, s.AllowLocalNetworks),
		types.MRP(settings.KeyRequestTimeout, s.RequestTimeout.String()),
		types.MRP(settings.KeyHTTPTimeout, s.HTTPTimeout.String()),
		types.MRP(settings.KeyCopyWindow, s.CopyWindow.String()),
		types.MRP(settings.KeyApologyText, s.ApologyText),
		types.MRP(settings.KeyQuickQuestions, s.QuickQuestions),
	)
}
