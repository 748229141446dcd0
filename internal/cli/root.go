// Package cli implements newsctl, a command line client for the newsreader API.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"newsreader/internal/cli/apiclient"
	"newsreader/internal/cli/output"
)

type app struct {
	cfgFile string
	verbose bool

	v      *viper.Viper
	cfg    *Config
	logger *slog.Logger
	out    *output.Printer
	client *apiclient.Client
}

// NewRootCmd builds the newsctl command tree.
func NewRootCmd(version string) *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "newsctl",
		Short: "Command line client for the newsreader API",
		Long: `newsctl talks to a running newsreader API server.

Example usage:
  newsctl headlines --country gb       # Top headlines for the UK
  newsctl search "climate" --page 2    # Search articles
  newsctl sources --category business  # List news sources
  newsctl favorites add <url> --title "..."
  newsctl token --role admin           # Mint a bearer token`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is .newsctl.yaml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	flags.String("api-url", "", "API base URL")
	flags.String("token", "", "bearer token for write commands")
	flags.StringP("output", "o", "", "output format: table or json")
	flags.Bool("no-color", false, "disable colored output")

	_ = a.v.BindPFlag("api.url", flags.Lookup("api-url"))
	_ = a.v.BindPFlag("api.token", flags.Lookup("token"))
	_ = a.v.BindPFlag("output.format", flags.Lookup("output"))

	root.AddCommand(
		a.headlinesCmd(),
		a.searchCmd(),
		a.sourcesCmd(),
		a.favoritesCmd(),
		a.cacheCmd(),
		a.countriesCmd(),
		a.tokenCmd(),
	)
	return root
}

// Execute runs newsctl against os.Args and prints any error.
func Execute(version string) int {
	root := NewRootCmd(version)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func (a *app) init(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	cfg, err := LoadConfig(a.v, a.cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	noColor, _ := cmd.Flags().GetBool("no-color")
	a.out = output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), format,
		!noColor && output.ResolveColors(cfg.Output.Colors) && isTerminal(cmd.OutOrStdout()))

	a.client, err = apiclient.New(cfg.API.URL, cfg.API.Token, cfg.API.Timeout)
	if err != nil {
		return err
	}

	a.logger.Debug("configuration loaded",
		slog.String("api_url", cfg.API.URL),
		slog.Bool("token_set", cfg.API.Token != ""),
		slog.String("output", string(format)))
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
