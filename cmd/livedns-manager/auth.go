package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yuriy-kovalchuk/livedns-manager/internal/auth"
)

func newAuthCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored LiveDNS API key",
		Long: `Manage the LiveDNS API key kept in the OS keychain.

The keychain is the last place the key is looked up, after --api-key,
$` + apiKeyEnv + ` and the config file.`,
	}

	cmd.AddCommand(newAuthLoginCommand(g))
	cmd.AddCommand(newAuthLogoutCommand(g))
	cmd.AddCommand(newAuthStatusCommand(g))

	return cmd
}

func newAuthLoginCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API key in the keychain",
		Long: `Store an API key in the local keychain. Without --api-key the key is
read from the terminal.

Example:
  livedns-manager auth login`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.TrimSpace(g.apiKey)
			if key == "" {
				fd := int(os.Stdin.Fd())
				if !term.IsTerminal(fd) {
					return errors.New("no terminal to read the API key from; pass --api-key")
				}
				fmt.Fprint(cmd.ErrOrStderr(), "Enter API key: ")
				data, err := term.ReadPassword(fd)
				fmt.Fprintln(cmd.ErrOrStderr())
				if err != nil {
					return fmt.Errorf("reading API key: %w", err)
				}
				key = strings.TrimSpace(string(data))
			}
			if key == "" {
				return errors.New("api key cannot be empty")
			}

			if err := g.keys.SetKey(key); err != nil {
				return fmt.Errorf("storing API key: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Saved API key")
			return nil
		},
	}
	return cmd
}

func newAuthLogoutCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := g.keys.DeleteKey()
			switch {
			case err == nil:
				fmt.Fprintln(cmd.OutOrStdout(), "Removed API key")
			case errors.Is(err, auth.ErrKeyNotFound):
				fmt.Fprintln(cmd.OutOrStdout(), "No API key stored")
			default:
				return fmt.Errorf("removing API key: %w", err)
			}
			return nil
		},
	}
}

func newAuthStatusCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether an API key is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := g.keys.GetKey()
			switch {
			case err == nil:
				fmt.Fprintln(cmd.OutOrStdout(), "livedns: logged in")
			case errors.Is(err, auth.ErrKeyNotFound):
				fmt.Fprintln(cmd.OutOrStdout(), "livedns: not logged in")
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "livedns: error (%v)\n", err)
			}
			return nil
		},
	}
}
