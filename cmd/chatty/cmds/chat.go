package cmds

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/chatty/pkg/clipboard"
	"github.com/go-go-golems/chatty/pkg/events"
	"github.com/go-go-golems/chatty/pkg/helpers"
	"github.com/go-go-golems/chatty/pkg/session"
	"github.com/go-go-golems/chatty/pkg/settings"
	"github.com/go-go-golems/chatty/pkg/ui"
	"github.com/go-go-golems/glazed/pkg/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

type ChatCommand struct {
	*cmds.CommandDescription
}

var _ cmds.BareCommand = (*ChatCommand)(nil)

type ChatSettings struct {
	Markdown   bool   `glazed.parameter:"markdown"`
	AltScreen  bool   `glazed.parameter:"alt-screen"`
	EventsFile string `glazed.parameter:"events-file"`
}

func NewChatCommand() (*ChatCommand, error) {
	chattyLayer, err := settings.NewParameterLayer()
	if err != nil {
		return nil, errors.Wrap(err, "could not create chatty parameter layer")
	}

	return &ChatCommand{
		CommandDescription: cmds.NewCommandDescription(
			"chat",
			cmds.WithShort("Chat with the answering service in the terminal"),
			cmds.WithFlags(
				parameters.NewParameterDefinition(
					"markdown",
					parameters.ParameterTypeBool,
					parameters.WithHelp("Render answers as markdown"),
					parameters.WithDefault(true),
				),
				parameters.NewParameterDefinition(
					"alt-screen",
					parameters.ParameterTypeBool,
					parameters.WithHelp("Use the alternate screen"),
					parameters.WithDefault(true),
				),
				parameters.NewParameterDefinition(
					"events-file",
					parameters.ParameterTypeString,
					parameters.WithHelp("Write every session event as JSON to this file"),
					parameters.WithDefault(""),
				),
			),
			cmds.WithLayersList(chattyLayer),
		),
	}, nil
}

func (c *ChatCommand) Run(ctx context.Context, parsedLayers *layers.ParsedLayers) error {
	cs := &ChatSettings{}
	if err := parsedLayers.InitializeStruct(layers.DefaultSlug, cs); err != nil {
		return errors.Wrap(err, "could not initialize chat settings")
	}

	s, err := loadSettings(parsedLayers)
	if err != nil {
		return err
	}
	client, err := newClient(s)
	if err != nil {
		return err
	}

	// the terminal belongs to the UI from here on
	if viper.GetString("log-file") == "" {
		log.Logger = zerolog.Nop()
	}

	router, err := events.NewEventRouter(events.WithLogger(helpers.NewWatermill(log.Logger)))
	if err != nil {
		return errors.Wrap(err, "could not create event router")
	}
	defer func() {
		_ = router.Close()
	}()

	sink := router.Sink(events.TopicSession)
	sess := session.New(client, append(sessionOptions(s), session.WithEventSink(sink))...)
	defer sess.Close()

	tracker := clipboard.NewTracker(
		clipboard.WithWindow(s.CopyWindow),
		clipboard.WithEventSink(sink),
	)
	defer tracker.Close()

	refresher := ui.NewRefresher()
	router.AddEventHandler("ui-forward", events.TopicSession, ui.SessionForwardFunc(refresher))

	if cs.EventsFile != "" {
		f, err := os.Create(cs.EventsFile)
		if err != nil {
			return errors.Wrapf(err, "could not create events file %s", cs.EventsFile)
		}
		defer func() {
			_ = f.Close()
		}()
		router.AddHandler("events-file", events.TopicSession, router.DumpRawEvents(f))
	}

	options := []tea.ProgramOption{}
	if cs.AltScreen {
		options = append(options, tea.WithAltScreen())
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		tty, err := ui.OpenTTY()
		if err != nil {
			return errors.Wrap(err, "stdin is not a terminal and no tty is available")
		}
		defer func() {
			_ = tty.Close()
		}()
		options = append(options, tea.WithInput(tty))
	}

	log.Info().
		Str("session_id", sess.ID()).
		Str("base_url", client.BaseURL()).
		Msg("Starting chat")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return router.Run(ctx)
	})

	eg.Go(func() error {
		defer cancel()

		select {
		case <-router.Running():
		case <-ctx.Done():
			return nil
		}

		m := ui.InitialModel(ctx, sess, tracker, ui.WithMarkdown(cs.Markdown))
		p := tea.NewProgram(m, options...)

		eg.Go(func() error {
			return refresher.Run(ctx, p)
		})

		_, err := p.Run()
		return err
	})

	return eg.Wait()
}
