package cmds

import (
	"context"
	"time"

	"github.com/go-go-golems/chatty/pkg/answering"
	"github.com/go-go-golems/chatty/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	"github.com/go-go-golems/glazed/pkg/middlewares"
	glazedsettings "github.com/go-go-golems/glazed/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/types"
	"github.com/pkg/errors"
)

type HealthCommand struct {
	*cmds.CommandDescription
}

var _ cmds.GlazeCommand = (*HealthCommand)(nil)

type HealthSettings struct {
	Info bool `glazed.parameter:"info"`
}

func NewHealthCommand() (*HealthCommand, error) {
	glazedParameterLayer, err := glazedsettings.NewGlazedParameterLayers()
	if err != nil {
		return nil, errors.Wrap(err, "could not create glazed parameter layer")
	}
	chattyLayer, err := settings.NewParameterLayer()
	if err != nil {
		return nil, errors.Wrap(err, "could not create chatty parameter layer")
	}

	return &HealthCommand{
		CommandDescription: cmds.NewCommandDescription(
			"health",
			cmds.WithShort("Check that the answering service is up and its model loaded"),
			cmds.WithFlags(
				parameters.NewParameterDefinition(
					"info",
					parameters.ParameterTypeBool,
					parameters.WithHelp("Also report the service description"),
					parameters.WithDefault(false),
				),
			),
			cmds.WithLayersList(glazedParameterLayer, chattyLayer),
		),
	}, nil
}

func (c *HealthCommand) RunIntoGlazeProcessor(ctx context.Context, parsedLayers *layers.ParsedLayers, gp middlewares.Processor) error {
	hs := &HealthSettings{}
	if err := parsedLayers.InitializeStruct(layers.DefaultSlug, hs); err != nil {
		return errors.Wrap(err, "could not initialize health settings")
	}

	s, err := loadSettings(parsedLayers)
	if err != nil {
		return err
	}
	client, err := newClient(s)
	if err != nil {
		return err
	}

	health, err := client.Health(ctx)
	if err != nil {
		return err
	}

	var info *answering.Info
	if hs.Info {
		info, err = client.Info(ctx)
		if err != nil {
			return err
		}
	}

	if err := gp.AddRow(ctx, healthRow(client.BaseURL(), health, info)); err != nil {
		return err
	}

	if !health.Healthy() {
		return errors.Errorf("service at %s is not healthy", client.BaseURL())
	}
	return nil
}

// healthRow flattens a health check result. The timestamp, a unix time in seconds, is
// reported in RFC 3339.
func healthRow(baseURL string, health *answering.Health, info *answering.Info) types.Row {
	row := types.NewRow(
		types.MRP("base_url", baseURL),
		types.MRP("status", health.Status),
		types.MRP("chatbot_loaded", health.ChatbotLoaded),
	)
	if health.Timestamp > 0 {
		ts := time.Unix(0, int64(health.Timestamp*float64(time.Second))).UTC()
		row.Set("timestamp", ts.Format(time.RFC3339))
	}
	if info != nil {
		row.Set("name", info.Name)
		row.Set("version", info.Version)
		row.Set("endpoints", info.Endpoints)
	}
	return row
}
