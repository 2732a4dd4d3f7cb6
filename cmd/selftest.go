package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ticketsmith/ticketsmith/model"
	"github.com/ticketsmith/ticketsmith/prompt"
)

type selfTestOptions struct {
	provider string
	model    string
	apiURL   string
	apiKey   string
}

func NewSelfTestCmd() *cobra.Command {
	options := &selfTestOptions{}

	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Verify connectivity to the completion API",
		Long: `Send a trivial prompt through the configured provider and print the
JSON response. Useful for checking credentials and endpoint reachability
before running a real generation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := resolveConfig(cmd, options.provider, options.model, options.apiURL)
			if err != nil {
				return err
			}
			apiKey, err := resolveAPIKey(ctx, options.apiKey)
			if err != nil {
				return err
			}
			client, err := buildClient(ctx, cfg, apiKey)
			if err != nil {
				return err
			}

			systemPrompt, userPrompt := prompt.SelfTest()
			response, err := client.Probe(ctx, []model.Message{
				{Role: model.RoleSystem, Content: systemPrompt},
				{Role: model.RoleUser, Content: userPrompt},
			})
			if err != nil {
				return fmt.Errorf("self-test failed: %w", err)
			}

			var pretty bytes.Buffer
			if err := json.Indent(&pretty, response, "", "  "); err != nil {
				return fmt.Errorf("format self-test response: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Self-test response:")
			fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&options.provider, "provider", "", "completion provider (openai or anthropic)")
	cmd.Flags().StringVar(&options.model, "model", "", "model to use")
	cmd.Flags().StringVar(&options.apiURL, "api-url", "", "custom API base URL")
	cmd.Flags().StringVar(&options.apiKey, "api-key", "", "API key")

	return cmd
}
