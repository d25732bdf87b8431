package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/yuriy-kovalchuk/livedns-manager/internal/auth"
	"github.com/yuriy-kovalchuk/livedns-manager/internal/config"
	"github.com/yuriy-kovalchuk/livedns-manager/internal/livedns"
	"github.com/yuriy-kovalchuk/livedns-manager/internal/telemetry"
)

const apiKeyEnv = "GANDI_API_KEY"

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	apiKey     string
	baseURL    string
	timeout    time.Duration
	output     string

	zapOpts zap.Options
	// keys is consulted last when resolving the API key.
	keys auth.Store

	telemetryShutdown func(context.Context) error
}

func newRootCommand() (*cobra.Command, *globalOptions) {
	g := &globalOptions{
		zapOpts: zap.Options{Development: true},
		keys:    auth.DefaultStore(),
	}

	cmd := &cobra.Command{
		Use:   "livedns-manager",
		Short: "Manage Gandi LiveDNS record sets declaratively",
		Long: `livedns-manager converges Gandi LiveDNS record sets towards a desired
state. Each run reads the provider, compares, and issues only the calls
needed; running it twice with the same arguments changes nothing the second
time.

Quick start:
  livedns-manager auth login                              # Store your API key
  livedns-manager record --domain my.com --record www \
      --type A --value 192.0.2.1                         # Ensure a record
  livedns-manager facts --domain my.com                   # List records
  livedns-manager controller                              # Publish HTTPRoute hostnames`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctrl.SetLogger(zap.New(zap.UseFlagOptions(&g.zapOpts), zap.WriteTo(cmd.ErrOrStderr())))

			switch g.output {
			case "json", "yaml":
			default:
				return fmt.Errorf("unsupported output format %q (want json or yaml)", g.output)
			}

			telemetry.Version = Version
			shutdown, err := telemetry.Setup(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			g.telemetryShutdown = shutdown
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "Path to the LiveDNS config file (default $LIVEDNS_CONFIG_PATH or "+config.DefaultProviderPath+")")
	flags.StringVar(&g.apiKey, "api-key", "", "LiveDNS API key (default $"+apiKeyEnv+", then config file, then keychain)")
	flags.StringVar(&g.baseURL, "base-url", "", "LiveDNS API root (default "+livedns.DefaultBaseURL+")")
	flags.DurationVar(&g.timeout, "timeout", 0, "Per-request timeout (default "+livedns.DefaultTimeout.String()+")")
	flags.StringVarP(&g.output, "output", "o", "json", "Output format: json or yaml")

	zapFlags := flag.NewFlagSet("zap", flag.ContinueOnError)
	g.zapOpts.BindFlags(zapFlags)
	flags.AddGoFlagSet(zapFlags)

	cmd.AddCommand(newRecordCommand(g))
	cmd.AddCommand(newFactsCommand(g))
	cmd.AddCommand(newAuthCommand(g))
	cmd.AddCommand(newControllerCommand(g))

	return cmd, g
}

func (g *globalOptions) shutdown() {
	if g.telemetryShutdown == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := g.telemetryShutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: flushing traces: %v\n", err)
	}
}

// loadConfig reads the provider config named by --config, falling back to
// the environment and the default path.
func (g *globalOptions) loadConfig() (*config.ProviderConfig, error) {
	if g.configPath != "" {
		return config.LoadProviderConfigFromPath(g.configPath)
	}
	return config.LoadProviderConfig()
}

// resolveAPIKey applies the lookup order flag, environment, config file,
// keychain. An empty key is returned without error so that parameter
// validation reports it alongside any other problems.
func (g *globalOptions) resolveAPIKey(cfg *config.ProviderConfig) (string, error) {
	if g.apiKey != "" {
		return g.apiKey, nil
	}
	if key := os.Getenv(apiKeyEnv); key != "" {
		return key, nil
	}
	if cfg.APIKey != "" {
		return cfg.APIKey, nil
	}
	if g.keys == nil {
		return "", nil
	}
	key, err := g.keys.GetKey()
	if err != nil {
		if errors.Is(err, auth.ErrKeyNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading api key from keychain: %w", err)
	}
	return key, nil
}

// credentials loads the provider config and resolves the API key.
func (g *globalOptions) credentials() (*config.ProviderConfig, string, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, "", err
	}
	apiKey, err := g.resolveAPIKey(cfg)
	if err != nil {
		return nil, "", err
	}
	return cfg, apiKey, nil
}

// newReconciler builds a client and reconciler from flags and config.
func (g *globalOptions) newReconciler(log logr.Logger, cfg *config.ProviderConfig, apiKey string, dryRun bool) (*livedns.Reconciler, error) {
	opts := []livedns.Option{livedns.WithBaseURL(firstNonEmpty(g.baseURL, cfg.BaseURL, livedns.DefaultBaseURL))}
	if g.timeout > 0 {
		opts = append(opts, livedns.WithTimeout(g.timeout))
	} else if cfg.Timeout > 0 {
		opts = append(opts, livedns.WithTimeout(cfg.Timeout))
	}

	client, err := livedns.New(log.WithName("client"), apiKey, opts...)
	if err != nil {
		return nil, err
	}
	return &livedns.Reconciler{Store: client, Log: log, DryRun: dryRun}, nil
}

// printOutput writes v to w in the selected format.
func (g *globalOptions) printOutput(w io.Writer, v any) error {
	switch g.output {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding output: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding output: %w", err)
		}
		return nil
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
