package cmds

import (
	"github.com/go-go-golems/chatty/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/cli"
	"github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/middlewares"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	glazedConfig "github.com/go-go-golems/glazed/pkg/config"
	"github.com/spf13/cobra"
)

const appName = "chatty"

// GetChattyMiddlewares resolves parameters from, in decreasing precedence,
// flags, arguments, CHATTY_* environment variables, config files and the layer
// defaults.
func GetChattyMiddlewares(
	parsedCommandLayers *layers.ParsedLayers,
	cmd *cobra.Command,
	args []string,
) ([]middlewares.Middleware, error) {
	commandSettings := &cli.CommandSettings{}
	if parsedCommandLayers != nil {
		_ = parsedCommandLayers.InitializeStruct(cli.CommandSettingsSlug, commandSettings)
	}

	return []middlewares.Middleware{
		middlewares.ParseFromCobraCommand(cmd,
			parameters.WithParseStepSource("cobra"),
		),
		middlewares.GatherArguments(args,
			parameters.WithParseStepSource("arguments"),
		),
		middlewares.WrapWithWhitelistedLayers(
			[]string{settings.ChattySlug},
			middlewares.UpdateFromEnv("CHATTY",
				parameters.WithParseStepSource("env"),
			),
		),
		middlewares.LoadParametersFromFiles(
			configFiles(commandSettings.ConfigFile),
			middlewares.WithConfigFileMapper(settings.ConfigFileMapper),
			middlewares.WithParseOptions(parameters.WithParseStepSource("config")),
		),
		middlewares.SetFromDefaults(parameters.WithParseStepSource("defaults")),
	}, nil
}

// configFiles lists the app config file, if any, followed by an explicit one.
// Later files take precedence.
func configFiles(explicit string) []string {
	var ret []string
	configPath, err := glazedConfig.ResolveAppConfigPath(appName, "")
	if err == nil && configPath != "" {
		ret = append(ret, configPath)
	}
	if explicit != "" {
		ret = append(ret, explicit)
	}
	return ret
}
