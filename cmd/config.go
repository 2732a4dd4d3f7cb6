package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ticketsmith/ticketsmith/config"
	"github.com/ticketsmith/ticketsmith/keyring"
)

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration and credentials",
	}

	cmd.AddCommand(newConfigSetKeyCmd())
	cmd.AddCommand(newConfigGetKeyCmd())
	cmd.AddCommand(newConfigUnsetKeyCmd())
	cmd.AddCommand(newConfigPathCmd())
	return cmd
}

func newConfigSetKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-key <api-key>",
		Short: "Store the completion API key in the system keyring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := getKeyring(cmd.Context()).Set(keyring.APIKeyName, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key stored in system keyring.")
			return nil
		},
	}
}

func newConfigGetKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-key",
		Short: "Show the stored API key (masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := getKeyring(cmd.Context()).Get(keyring.APIKeyName)
			if err != nil {
				var notFound *keyring.ErrSecretNotFound
				if errors.As(err, &notFound) {
					return errors.New("no API key stored; use 'ticketsmith config set-key'")
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), maskSecret(secret))
			return nil
		},
	}
}

func newConfigUnsetKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset-key",
		Short: "Remove the stored API key from the system keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := getKeyring(cmd.Context()).Delete(keyring.APIKeyName); err != nil {
				var notFound *keyring.ErrSecretNotFound
				if errors.As(err, &notFound) {
					return errors.New("no API key stored")
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key removed from system keyring.")
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := config.NewStore(getFileSystem(cmd.Context()))
			fmt.Fprintln(cmd.OutOrStdout(), store.Path())
			return nil
		},
	}
}

func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
