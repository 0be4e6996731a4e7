package cmds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-go-golems/chatty/pkg/answering"
	"github.com/go-go-golems/chatty/pkg/render"
	"github.com/go-go-golems/chatty/pkg/session"
	"github.com/go-go-golems/chatty/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

type AskCommand struct {
	*cmds.CommandDescription
	stdin  io.Reader
	stderr io.Writer
}

var _ cmds.WriterCommand = (*AskCommand)(nil)

type AskSettings struct {
	Question  []string `glazed.parameter:"question"`
	Output    string   `glazed.parameter:"output"`
	SessionID string   `glazed.parameter:"session-id"`
}

type askOutput struct {
	SessionID string            `json:"session_id"`
	Messages  []session.Message `json:"messages"`
}

func NewAskCommand() (*AskCommand, error) {
	chattyLayer, err := settings.NewParameterLayer()
	if err != nil {
		return nil, errors.Wrap(err, "could not create chatty parameter layer")
	}

	return &AskCommand{
		CommandDescription: cmds.NewCommandDescription(
			"ask",
			cmds.WithShort("Ask a single question and print the answer"),
			cmds.WithLong("Ask a single question and print the answer. Use - to read the question from stdin."),
			cmds.WithFlags(
				parameters.NewParameterDefinition(
					"output",
					parameters.ParameterTypeChoice,
					parameters.WithHelp("Output format"),
					parameters.WithChoices("text", "markdown", "html", "json"),
					parameters.WithDefault("text"),
				),
				parameters.NewParameterDefinition(
					"session-id",
					parameters.ParameterTypeString,
					parameters.WithHelp("Session id sent to the service (default: random)"),
					parameters.WithDefault(""),
				),
			),
			cmds.WithArguments(
				parameters.NewParameterDefinition(
					"question",
					parameters.ParameterTypeStringList,
					parameters.WithHelp("Question to ask"),
					parameters.WithRequired(true),
				),
			),
			cmds.WithLayersList(chattyLayer),
		),
		stdin:  os.Stdin,
		stderr: os.Stderr,
	}, nil
}

func (c *AskCommand) RunIntoWriter(ctx context.Context, parsedLayers *layers.ParsedLayers, w io.Writer) error {
	as := &AskSettings{}
	if err := parsedLayers.InitializeStruct(layers.DefaultSlug, as); err != nil {
		return errors.Wrap(err, "could not initialize ask settings")
	}

	question := strings.Join(as.Question, " ")
	if question == "-" {
		b, err := io.ReadAll(c.stdin)
		if err != nil {
			return errors.Wrap(err, "could not read question from stdin")
		}
		question = string(b)
	}

	s, err := loadSettings(parsedLayers)
	if err != nil {
		return err
	}
	client, err := newClient(s)
	if err != nil {
		return err
	}

	options := sessionOptions(s)
	if as.SessionID != "" {
		options = append(options, session.WithSessionID(as.SessionID))
	}
	sess := session.New(client, options...)
	defer sess.Close()

	done, ok := sess.Submit(ctx, question)
	if !ok {
		return errors.New("question must not be empty")
	}
	<-done

	msgs := sess.Messages()
	answer := msgs[len(msgs)-1]
	if answer.IsError {
		_, _ = fmt.Fprintln(c.stderr, answer.Text)
		return errors.Wrapf(answering.ErrServiceUnavailable, "no answer from %s", client.BaseURL())
	}

	return printAnswer(w, as.Output, sess.ID(), msgs, answer)
}

func printAnswer(w io.Writer, output string, sessionID string, msgs []session.Message, answer session.Message) error {
	switch output {
	case "markdown":
		_, err := fmt.Fprintln(w, answer.Text)
		return err

	case "html":
		out, err := render.RenderText(render.NewHTMLRenderer(), answer.Text)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(w, out)
		return err

	case "json":
		b, err := json.MarshalIndent(askOutput{SessionID: sessionID, Messages: msgs}, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err

	case "text":
		r, err := newTerminalRenderer()
		if err != nil {
			return err
		}
		out, err := render.RenderText(r, answer.Text)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(w, out)
		if err != nil {
			return err
		}
		if pt, ok := answer.ProcessingTime(); ok {
			_, err = fmt.Fprintln(w, render.FormatProcessingTime(pt))
		}
		return err

	default:
		return errors.Errorf("unknown output format %q", output)
	}
}

func newTerminalRenderer() (*render.TerminalRenderer, error) {
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) {
		return render.NewTerminalRenderer(
			render.WithStyle("notty"),
			render.WithCodeFormatter("noop"),
		)
	}

	width := 80
	if w, _, err := term.GetSize(int(fd)); err == nil && w > 0 {
		width = w
	}
	return render.NewTerminalRenderer(render.WithWordWrap(width))
}
