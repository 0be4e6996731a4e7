package main

import (
	"embed"
	"os"

	"github.com/go-go-golems/chatty/cmd/chatty/cmds"
	clay "github.com/go-go-golems/clay/pkg"
	"github.com/go-go-golems/glazed/pkg/cli"
	glazed_cmds "github.com/go-go-golems/glazed/pkg/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/logging"
	"github.com/go-go-golems/glazed/pkg/help"
	help_cmd "github.com/go-go-golems/glazed/pkg/help/cmd"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//go:embed doc/*
var docFS embed.FS

var rootCmd = &cobra.Command{
	Use:           "chatty",
	Short:         "chatty is a terminal client for a question answering service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// reinitialize the logger because we can now parse --log-level and co
		// from the command line flag
		return logging.InitLoggerFromViper()
	},
}

func newCommands() ([]glazed_cmds.Command, error) {
	chatCmd, err := cmds.NewChatCommand()
	if err != nil {
		return nil, err
	}
	askCmd, err := cmds.NewAskCommand()
	if err != nil {
		return nil, err
	}
	healthCmd, err := cmds.NewHealthCommand()
	if err != nil {
		return nil, err
	}
	configCmd, err := cmds.NewConfigCommand()
	if err != nil {
		return nil, err
	}
	return []glazed_cmds.Command{chatCmd, askCmd, healthCmd, configCmd}, nil
}

func main() {
	err := clay.InitViper("chatty", rootCmd)
	cobra.CheckErr(err)

	log.Debug().
		Str("config", viper.ConfigFileUsed()).
		Msg("Loaded configuration")

	helpSystem := help.NewHelpSystem()
	err = helpSystem.LoadSectionsFromFS(docFS, ".")
	cobra.CheckErr(err)
	help_cmd.SetupCobraRootCommand(helpSystem, rootCmd)

	commands, err := newCommands()
	cobra.CheckErr(err)
	for _, c := range commands {
		command, err := cli.BuildCobraCommand(c,
			cli.WithCobraMiddlewaresFunc(cmds.GetChattyMiddlewares),
		)
		cobra.CheckErr(err)
		rootCmd.AddCommand(command)
	}

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
