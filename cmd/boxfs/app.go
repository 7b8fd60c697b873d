package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/desertwitch/boxfs/internal/boxfs"
	"github.com/desertwitch/boxfs/internal/configuration"
	"github.com/desertwitch/boxfs/internal/hostfs"
	"github.com/desertwitch/boxfs/internal/schema"
	"github.com/spf13/pflag"
)

// App holds everything a command needs.
type App struct {
	box         *boxfs.FS
	hostHandler *hostfs.Handler
	config      *configuration.Config
	out         io.Writer

	long     bool
	parents  bool
	sizeHint int
}

type command struct {
	name    string
	usage   string
	summary string
	minArgs int
	maxArgs int
	create  bool
	run     func(ctx context.Context, app *App, args []string) error
}

func (c *command) validate(args []string) error {
	if len(args) < c.minArgs || len(args) > c.maxArgs {
		return fmt.Errorf("%w: boxfs %s %s", ErrUsage, c.name, c.usage)
	}

	return nil
}

func lookupCommand(name string) (*command, bool) {
	i := slices.IndexFunc(commands, func(c *command) bool {
		return c.name == name
	})
	if i < 0 {
		return nil, false
	}

	return commands[i], true
}

func printUsage(out io.Writer, flagSet *pflag.FlagSet) {
	var sb strings.Builder

	sb.WriteString("Usage: boxfs [flags] <command> [args]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(&sb, "  %-12s %-24s %s\n", c.name, c.usage, c.summary)
	}
	sb.WriteString("\nFlags:\n")
	sb.WriteString(flagSet.FlagUsages())

	fmt.Fprint(out, sb.String())
}

// run parses args, opens the container and runs the requested command.
func run(ctx context.Context, args []string, out io.Writer) error {
	var (
		containerPath string
		configPath    string
		logLevel      string
		noVerify      bool
		showVersion   bool
	)

	app := &App{out: out}

	flagSet := pflag.NewFlagSet("boxfs", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVarP(&containerPath, "container", "c", "", "path of the container file")
	flagSet.StringVar(&configPath, "config", "", "environment-style configuration file")
	flagSet.StringVar(&logLevel, "log-level", "", "one of debug, info, warn or error")
	flagSet.BoolVar(&noVerify, "no-verify", false, "skip blake3 verification of transferred files")
	flagSet.BoolVarP(&app.long, "long", "l", false, "show types and sizes in listings")
	flagSet.BoolVarP(&app.parents, "parents", "p", false, "create missing parent directories")
	flagSet.IntVar(&app.sizeHint, "size-hint", 0, "initial content capacity of new files")
	flagSet.BoolVar(&showVersion, "version", false, "print the version")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage(out, flagSet)

			return nil
		}

		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	if showVersion {
		fmt.Fprintf(out, "boxfs %s\n", Version)

		return nil
	}

	positional := flagSet.Args()
	if len(positional) == 0 || positional[0] == "help" {
		printUsage(out, flagSet)

		return nil
	}

	cmd, ok := lookupCommand(positional[0])
	if !ok {
		return fmt.Errorf("%w: unknown command %q", ErrUsage, positional[0])
	}

	cmdArgs := positional[1:]
	if err := cmd.validate(cmdArgs); err != nil {
		return err
	}

	var configFiles []string
	if configPath != "" {
		configFiles = append(configFiles, configPath)
	}

	config, err := configuration.NewHandler(&configuration.GodotenvProvider{}).Load(configFiles...)
	if err != nil {
		return err
	}

	if containerPath != "" {
		config.Container = containerPath
	}

	if noVerify {
		config.Verify = false
	}

	if logLevel != "" {
		if err := config.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
			return fmt.Errorf("%w: --log-level %q", ErrUsage, logLevel)
		}
	}

	setupLogging(config.LogLevel)

	if config.Container == "" {
		return ErrNoContainer
	}

	app.config = config
	app.hostHandler = hostfs.NewHandler(&schema.OS{}, &schema.Unix{}, config.Verify, config.FreeSpaceFloor)

	if cmd.create {
		box, err := boxfs.Create(config.Container)
		if err != nil {
			return err
		}
		app.box = box
	} else {
		box, err := boxfs.Open(config.Container)
		if err != nil {
			return err
		}
		app.box = box
	}

	defer func() {
		if err := app.box.Close(); err != nil {
			slog.Warn("Failed to close container.",
				"path", config.Container,
				"err", err,
			)
		}
	}()

	return cmd.run(ctx, app, cmdArgs)
}
