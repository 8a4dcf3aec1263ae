// Package shell provides the interactive REPL for tempchart.
package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"gopkg.in/yaml.v3"

	"github.com/r3d91ll/tempchart/pkg/chart"
	"github.com/r3d91ll/tempchart/pkg/config"
	cerrors "github.com/r3d91ll/tempchart/pkg/errors"
	"github.com/r3d91ll/tempchart/pkg/export"
	"github.com/r3d91ll/tempchart/pkg/help"
	"github.com/r3d91ll/tempchart/pkg/pipeline"
	"github.com/r3d91ll/tempchart/pkg/spinner"
)

// PipelineFactory builds a pipeline for a configuration. The shell calls it
// again whenever a command changes the configuration.
type PipelineFactory func(cfg *config.Config) (*pipeline.Pipeline, error)

// Config holds shell configuration.
type Config struct {
	HistoryFile string

	// ConfigPath is the default target of /save.
	ConfigPath string

	Factory  PipelineFactory
	Prompter Prompter

	// Out receives command output; nil means stdout.
	Out io.Writer
}

// Shell is the interactive command-line interface.
type Shell struct {
	rl         *readline.Instance
	cfg        *config.Config
	factory    PipelineFactory
	pipe       *pipeline.Pipeline
	prompter   Prompter
	out        io.Writer
	formatter  *cerrors.Formatter
	configPath string
}

// New creates a new interactive shell for cfg.
func New(cfg *config.Config, sc Config) (*Shell, error) {
	s, err := newShell(cfg, sc)
	if err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32mtempchart>\033[0m ",
		HistoryFile:     sc.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    NewShellCompleter(),
	})
	if err != nil {
		return nil, cerrors.InternalWrap(err, cerrors.ErrInternalPanic, "failed to initialize line editor")
	}
	s.rl = rl
	if sc.Prompter == nil {
		s.prompter = newReadlinePrompter(rl)
	}
	return s, nil
}

// newShell builds everything but the line editor.
func newShell(cfg *config.Config, sc Config) (*Shell, error) {
	if sc.Factory == nil {
		return nil, cerrors.New(cerrors.ErrConfigInvalid, cerrors.CategoryConfig, "shell needs a pipeline factory")
	}
	out := sc.Out
	if out == nil {
		out = os.Stdout
	}
	prompter := sc.Prompter
	if prompter == nil {
		prompter = NewReaderPrompter(os.Stdin, out)
	}
	configPath := sc.ConfigPath
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}

	formatter := cerrors.DefaultFormatter()
	formatter.Writer = out
	f, ok := out.(*os.File)
	formatter.UseColor = ok && cerrors.IsTTY(f)

	pipe, err := sc.Factory(cfg)
	if err != nil {
		return nil, err
	}

	return &Shell{
		cfg:        cfg,
		factory:    sc.Factory,
		pipe:       pipe,
		prompter:   prompter,
		out:        out,
		formatter:  formatter,
		configPath: configPath,
	}, nil
}

// Run starts the interactive loop.
func (s *Shell) Run(ctx context.Context) error {
	defer s.rl.Close()

	fmt.Fprintln(s.out, "Generate temperature charts. Type /help for commands.")
	fmt.Fprintln(s.out, "Commands: /generate, /preset, /format, /layout, /config, /save, /last, /help, /quit")
	fmt.Fprintln(s.out)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := s.handleCommand(ctx, line); err != nil {
			if err == errQuit {
				return nil
			}
			s.formatter.Display(err)
		}
	}
}

var errQuit = fmt.Errorf("quit")

func (s *Shell) handleCommand(ctx context.Context, line string) error {
	parts := strings.Fields(line)
	cmd := parts[0]
	args := parts[1:]

	if !strings.HasPrefix(cmd, "/") {
		return cerrors.AttachSuggestions(
			cerrors.Commandf(cerrors.ErrCommandNotFound, "commands start with '/': %s", cmd).
				WithContext("input", line))
	}

	switch cmd {
	case "/quit", "/exit", "/q":
		return errQuit

	case "/help", "/h":
		s.printHelp(args)

	case "/generate", "/g":
		return s.generate(ctx)

	case "/preset":
		return s.handlePreset(args)

	case "/format":
		return s.handleFormat(args)

	case "/layout":
		s.printLayout()

	case "/config":
		return s.printConfig()

	case "/save":
		return s.handleSave(args)

	case "/last":
		s.printLast()

	default:
		return cerrors.AttachSuggestions(
			cerrors.Commandf(cerrors.ErrCommandNotFound, "unknown command: %s", cmd).
				WithContext("command", cmd))
	}

	return nil
}

func (s *Shell) generate(ctx context.Context) error {
	spin := spinner.NewWithOptions(spinner.Options{
		Message:     "Rendering chart...",
		ShowElapsed: true,
		Writer:      s.out,
	})
	spin.Start()

	res := <-s.pipe.Start(ctx)
	if res.Err != nil {
		spin.Fail("Chart generation failed")
		return res.Err
	}

	spin.Success(pipeline.SuccessMessage(res))
	fmt.Fprintf(s.out, "  %s\n", res.Location)
	return nil
}

func (s *Shell) handlePreset(args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(s.out, "Preset: %s (available: %s)\n", s.cfg.Chart.Preset, strings.Join(chart.PresetNames(), ", "))
		return nil
	}
	name := args[0]
	return s.apply(func(c *config.Config) { c.Chart.Preset = name }, "Preset set to: "+name)
}

func (s *Shell) handleFormat(args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(s.out, "Format: %s\n", s.cfg.Output.Format)
		return nil
	}
	format, err := export.ParseFormat(args[0])
	if err != nil {
		return err
	}
	return s.apply(func(c *config.Config) { c.Output.Format = string(format) }, "Format set to: "+string(format))
}

// apply changes a copy of the configuration and swaps it in only when the
// copy validates and a pipeline can be built from it.
func (s *Shell) apply(change func(*config.Config), done string) error {
	next := *s.cfg
	change(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	pipe, err := s.factory(&next)
	if err != nil {
		return err
	}
	s.cfg = &next
	s.pipe = pipe
	fmt.Fprintln(s.out, done)
	return nil
}

func (s *Shell) handleSave(args []string) error {
	path := s.configPath
	force := false
	for _, arg := range args {
		if arg == "-f" || arg == "--force" {
			force = true
			continue
		}
		path = arg
	}

	if _, err := os.Stat(path); err == nil && !force {
		ok, err := s.prompter.Confirm(fmt.Sprintf("Overwrite %s?", path))
		if err != nil {
			return cerrors.Wrap(err, cerrors.ErrCommandInvalidArg, cerrors.CategoryCommand, "failed to read confirmation")
		}
		if !ok {
			fmt.Fprintln(s.out, "Save cancelled.")
			return nil
		}
	}

	if err := s.cfg.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Configuration saved to %s\n", path)
	return nil
}

func (s *Shell) printHelp(args []string) {
	r := help.NewRenderer(s.out, s.formatter.UseColor)
	if len(args) == 0 {
		r.RenderFull()
		return
	}
	r.RenderCommand(args[0])
}

func (s *Shell) printLayout() {
	l := s.pipe.Layout()
	major := 0
	for _, t := range l.Ticks {
		if t.Major {
			major++
		}
	}
	fmt.Fprintf(s.out, "Layout (%s):\n", s.cfg.Chart.Preset)
	fmt.Fprintf(s.out, "  Page:        %.0f x %.0f\n", l.PageWidth, l.PageHeight)
	fmt.Fprintf(s.out, "  Days:        %d\n", l.DayCount)
	fmt.Fprintf(s.out, "  Range:       %.2f to %.2f\n", l.MinTemp(), l.MaxTemp())
	fmt.Fprintf(s.out, "  Orientation: %s\n", l.Orientation)
	fmt.Fprintf(s.out, "  Ticks:       %d (%d highlighted)\n", len(l.Ticks), major)
}

func (s *Shell) printConfig() error {
	shown := *s.cfg
	if shown.Storage.SecretKey != "" {
		shown.Storage.SecretKey = "****"
	}
	data, err := yaml.Marshal(&shown)
	if err != nil {
		return cerrors.ConfigWrap(err, cerrors.ErrConfigWriteFailed, "failed to render configuration")
	}
	fmt.Fprint(s.out, string(data))
	return nil
}

func (s *Shell) printLast() {
	res, ok := s.pipe.Last()
	if !ok {
		fmt.Fprintln(s.out, "No chart generated yet.")
		return
	}
	status := "ok"
	if res.Err != nil {
		status = "failed"
	}
	fmt.Fprintf(s.out, "Last run %s (%s):\n", res.ID.String()[:8], status)
	fmt.Fprintf(s.out, "  Started:  %s\n", res.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(s.out, "  Format:   %s\n", res.Format)
	if res.Err != nil {
		fmt.Fprintf(s.out, "  Error:    %v\n", res.Err)
		return
	}
	fmt.Fprintf(s.out, "  Location: %s\n", res.Location)
	fmt.Fprintf(s.out, "  Size:     %d bytes\n", res.Size)
}
