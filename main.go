package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/carlosmiguelsoto/einstein/pkg/einstein"
	"github.com/carlosmiguelsoto/einstein/pkg/telemetry"
)

const usage = `usage: einstein [-env file] <command> [args]

commands:
  login          ask for SoC credentials and store them
  logout         forget the stored credentials
  upload <file>  upload a task file and print the report
  tasks <file>   show which modules offer a task file
  refresh        fetch the task list now
  serve          run the local API for editor integrations
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := flag.NewFlagSet("einstein", flag.ContinueOnError)
	envFile := flags.String("env", "", "dotenv file to load instead of ./.env")
	flags.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}

	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	config, err := einstein.LoadConfig(envFiles...)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown := setupTelemetry(ctx, config)
	defer shutdown()

	session, err := einstein.Open(ctx, config, &einstein.WriterReporter{Out: os.Stdout})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer session.Close()

	prompter := einstein.NewTerminalPrompter()
	command, rest := flags.Arg(0), flags.Args()[1:]

	switch command {
	case "login":
		_, err = session.Login(ctx, prompter)
		if err == nil {
			fmt.Println("Authenticated. Einstein is now running.")
		}
	case "logout":
		err = session.Logout(ctx)
	case "upload":
		if len(rest) != 1 {
			fmt.Fprint(os.Stderr, usage)
			return 2
		}
		report, uploadErr := session.Upload(ctx, rest[0], prompter)
		if uploadErr == nil && !report.Passed {
			return 3
		}
		err = uploadErr
	case "tasks":
		if len(rest) != 1 {
			fmt.Fprint(os.Stderr, usage)
			return 2
		}
		task, lookupErr := session.LookupTask(ctx, rest[0])
		if lookupErr != nil {
			err = lookupErr
		} else if len(task.Modules) == 0 {
			fmt.Printf("%s (%s): not on Einstein\n", task.Name, task.Key)
		} else {
			fmt.Printf("%s (%s): %s\n", task.Name, task.Key, strings.Join(task.Modules, " "))
		}
	case "refresh":
		dir, refreshErr := session.Tasks.Refresh(ctx, true)
		if refreshErr == nil {
			fmt.Printf("%d tasks\n", len(dir))
		}
		err = refreshErr
	case "serve":
		err = einstein.RunServer(ctx, session, config.ServerAddr)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", command, usage)
		return 2
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, errorMessage(err))
		return 1
	}
	return 0
}

func errorMessage(err error) string {
	if errors.Is(err, einstein.ErrSuperseded) {
		return "Upload cancelled: a newer upload was started."
	}
	return err.Error()
}

func setupTelemetry(ctx context.Context, config einstein.Config) func() {
	if config.OTel != "stdout" {
		telemetry.UseTextLogger(os.Stderr, parseLevel(config.LogLevel))
		return func() {}
	}
	otelShutdown, err := telemetry.SetupOTelSDK(ctx, os.Stderr)
	if err != nil {
		telemetry.UseTextLogger(os.Stderr, parseLevel(config.LogLevel))
		telemetry.Log("failed to setup OTel SDK: "+err.Error(), slog.LevelWarn)
		return func() {}
	}
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "OTel shutdown error: %v\n", err)
		}
	}
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelWarn
	}
	return level
}
