package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ticketsmith/ticketsmith/config"
	"github.com/ticketsmith/ticketsmith/generator"
	"github.com/ticketsmith/ticketsmith/input"
	"github.com/ticketsmith/ticketsmith/keyring"
	"github.com/ticketsmith/ticketsmith/model"
)

type generateOptions struct {
	file           string
	provider       string
	model          string
	apiURL         string
	apiKey         string
	nonInteractive bool
	outputFormat   string
}

func NewGenerateCmd() *cobra.Command {
	options := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [flags]",
		Short: "Generate work tickets from requirement text",
		Long: `Generate work tickets from requirement text.

Examples:
  # Generate tickets from a Markdown file with the default model
  ticketsmith generate --file requirements.md

  # Use interactive mode with requirements typed on stdin
  ticketsmith generate

  # Non-interactive mode against an OpenAI-compatible endpoint
  ticketsmith generate --file specs.html --api-url https://api.deepseek.com/v1 --model deepseek-chat --non-interactive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, options)
		},
	}

	cmd.Flags().StringVar(&options.file, "file", "", "path to the requirements file (HTML, Markdown, or plain text)")
	cmd.Flags().StringVar(&options.provider, "provider", "", "completion provider (openai or anthropic)")
	cmd.Flags().StringVar(&options.model, "model", "", "model to use")
	cmd.Flags().StringVar(&options.apiURL, "api-url", "", "custom API base URL")
	cmd.Flags().StringVar(&options.apiKey, "api-key", "", "API key (can also be set via TICKETSMITH_API_KEY or stored with 'ticketsmith config set-key')")
	cmd.Flags().BoolVar(&options.nonInteractive, "non-interactive", false, "run in non-interactive mode")
	cmd.Flags().StringVar(&options.outputFormat, "output-format", string(OutputFormatMarkdown), "output format (markdown or json)")

	return cmd
}

func runGenerate(cmd *cobra.Command, options *generateOptions) error {
	ctx := cmd.Context()

	format, err := ParseOutputFormat(options.outputFormat)
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(cmd, options.provider, options.model, options.apiURL)
	if err != nil {
		return err
	}

	apiKey, err := resolveAPIKey(ctx, options.apiKey)
	if err != nil {
		return err
	}

	raw, ext, err := readRequirements(cmd, options)
	if err != nil {
		return err
	}

	requirements, err := input.Clean(raw, ext)
	if err != nil {
		return fmt.Errorf("process input: %w", err)
	}

	client, err := buildClient(ctx, cfg, apiKey)
	if err != nil {
		return err
	}

	gen := generator.New(client,
		generator.WithPrompter(generator.NewTermPrompter(cmd.InOrStdin(), cmd.OutOrStdout())),
		generator.WithLogger(slog.Default()),
	)

	tickets, err := gen.Generate(ctx, requirements, !options.nonInteractive)
	if err != nil {
		var qualityErr *generator.QualityError
		if errors.As(err, &qualityErr) {
			return fmt.Errorf("%w; re-run interactively to refine them, or relax the input", qualityErr)
		}
		return err
	}

	return renderTickets(cmd.OutOrStdout(), tickets, format)
}

func readRequirements(cmd *cobra.Command, options *generateOptions) (raw string, ext string, err error) {
	switch {
	case options.file == "" && !options.nonInteractive:
		fmt.Fprintln(cmd.OutOrStdout(), "Please enter your requirements (press Ctrl+D when finished):")
		data, readErr := io.ReadAll(cmd.InOrStdin())
		if readErr != nil {
			return "", "", fmt.Errorf("read requirements from stdin: %w", readErr)
		}
		return string(data), "", nil

	case options.file != "":
		fs := getFileSystem(cmd.Context())
		data, readErr := fs.ReadFile(options.file)
		if os.IsNotExist(readErr) {
			return "", "", fmt.Errorf("requirements file %q not found", options.file)
		}
		if readErr != nil {
			return "", "", fmt.Errorf("read requirements file %q: %w", options.file, readErr)
		}

		ext = strings.ToLower(filepath.Ext(options.file))
		switch ext {
		case ".md", ".markdown", ".html", ".htm", ".txt", "":
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "Warning: unrecognized file type %q, treating as plain text.\n", ext)
		}
		return string(data), ext, nil

	default:
		return "", "", errors.New("in non-interactive mode a requirements file must be provided via --file")
	}
}

func resolveConfig(cmd *cobra.Command, providerFlag, modelFlag, apiURLFlag string) (config.Config, error) {
	store := config.NewStore(getFileSystem(cmd.Context()))
	cfg, err := store.Load()
	if err != nil {
		return config.Config{}, err
	}

	if env := os.Getenv("TICKETSMITH_PROVIDER"); env != "" {
		cfg.Provider = env
	}
	if env := os.Getenv("TICKETSMITH_MODEL"); env != "" {
		cfg.Model = env
	}
	if env := os.Getenv("TICKETSMITH_API_URL"); env != "" {
		cfg.APIURL = env
	}

	if providerFlag != "" {
		cfg.Provider = providerFlag
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
	}
	if apiURLFlag != "" {
		cfg.APIURL = apiURLFlag
	}

	return cfg, nil
}

// resolveAPIKey looks the key up in the order flag, environment,
// OS keyring.
func resolveAPIKey(ctx context.Context, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv("TICKETSMITH_API_KEY"); env != "" {
		return env, nil
	}
	if env := os.Getenv("OPENAI_API_KEY"); env != "" {
		return env, nil
	}

	secret, err := getKeyring(ctx).Get(keyring.APIKeyName)
	if err == nil && secret != "" {
		return secret, nil
	}
	var notFound *keyring.ErrSecretNotFound
	if err != nil && !errors.As(err, &notFound) {
		return "", fmt.Errorf("read API key from keyring: %w", err)
	}

	return "", errors.New("API key not found; provide it via --api-key, the TICKETSMITH_API_KEY environment variable, or 'ticketsmith config set-key'")
}

func buildClient(ctx context.Context, cfg config.Config, apiKey string) (*model.Client, error) {
	factory := getProviderFactory(ctx)
	provider, err := factory(model.ProviderKind(cfg.Provider), apiKey, model.WithBaseURL(cfg.APIURL))
	if err != nil {
		return nil, err
	}

	retryCfg := model.DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retryCfg.MaxAttempts = cfg.MaxRetries
	}

	return model.NewClient(provider, cfg.Model,
		model.WithRetryConfig(retryCfg),
		model.WithLogger(slog.Default()),
		model.WithRetryHooks(&model.LogRetryHook{Logger: slog.Default()}),
		model.WithMetrics(model.NewMetrics(prometheus.NewRegistry())),
	), nil
}
