package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Version is the version of the CLI.
	Version = "unknown"

	// GitCommit is the commit that the CLI was built from.
	GitCommit = "unknown"

	// BuildDate is the date the CLI was built.
	BuildDate = "unknown"
)

type globalOptions struct {
	LogLevel LogLevel
}

func NewRootCmd() *cobra.Command {
	options := &globalOptions{LogLevel: LogLevelInfo}
	cmd := &cobra.Command{
		Use:   "ticketsmith",
		Short: "Transform requirement text into structured work tickets",
		Long: `Ticketsmith turns free-form requirement documents into detailed,
actionable work tickets using a language-model completion API.

Examples:
  # Generate tickets from a Markdown requirements file
  ticketsmith generate --file requirements.md

  # Interactive mode with requirements typed on stdin
  ticketsmith generate

  # Non-interactive mode with an explicit model
  ticketsmith generate --file specs.html --model gpt-4o --non-interactive

  # Verify API connectivity
  ticketsmith selftest`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env file is the normal case.
			_ = godotenv.Load()
			setupLogging(options.LogLevel)
			return nil
		},
	}

	cmd.PersistentFlags().Var(&options.LogLevel, "log-level", "set the log level (debug, info, warn, error)")

	cmd.AddCommand(NewGenerateCmd())
	cmd.AddCommand(NewSelfTestCmd())
	cmd.AddCommand(NewConfigCmd())
	cmd.AddCommand(NewVersionCmd())
	return cmd
}

func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func setupLogging(level LogLevel) {
	sink := &lumberjack.Logger{
		Filename:   filepath.Join(xdg.StateHome, "ticketsmith", "ticketsmith.log"),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(sink, &slog.HandlerOptions{
		Level: level.SlogLevel(),
	})))
}

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

func (l *LogLevel) String() string {
	return string(*l)
}

func (l *LogLevel) Set(value string) error {
	switch LogLevel(value) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		*l = LogLevel(value)
		return nil
	default:
		return fmt.Errorf("invalid log level %q (expected debug, info, warn or error)", value)
	}
}

func (l *LogLevel) Type() string {
	return "level"
}

func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
