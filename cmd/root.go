package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/devchat/internal"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	cfgFile string
	version string = "dev"
	commit  string = "unknown"
	date    string = "unknown"

	// v holds defaults, env and flag bindings; cfg is resolved from it before each command.
	v   = internal.NewViper()
	cfg *internal.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "devchat",
	Short: "Chat with your programming assistant from the terminal",
	Long: `devchat is a terminal client for the programming-assistant backend.

It signs you in with an identity-provider token, keeps independent
conversation sessions, and renders replies with syntax-highlighted
code blocks.

Quick Start:
  devchat login --id-token <token>     # Sign in
  devchat                              # Open the chat view
  devchat ask "How do I reverse a slice in Go?"
  devchat sessions                     # List your sessions
  devchat show <session-id>            # Print a session's history

Configuration is read from $XDG_CONFIG_HOME/devchat/config.{toml,yaml},
a .env file, and DEVCHAT_* environment variables.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		internal.SetVerbose(verbose)

		loaded, err := internal.LoadConfig(v, cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		if cfg.NoColor {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
		internal.LogDebug("Backend: %s, config dir: %s", cfg.APIURL, cfg.ConfigDir)
		return nil
	},
	// Without a subcommand, authenticated users land in the chat view.
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cfg)
		defer a.Close()
		if err := a.RequireAuth(); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), internal.LoginHint(err))
			return nil
		}
		return runChat(cmd, a)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		internal.PrintError(fmt.Sprintf("Error: %v", err))
		os.Exit(1)
	}
}

// loginRequiredError replaces an auth failure with a sign-in hint
type loginRequiredError struct {
	err error
}

func (e *loginRequiredError) Error() string {
	return internal.LoginHint(e.err)
}

func (e *loginRequiredError) Unwrap() error {
	return e.err
}

// commandError turns auth failures into a "please log in" error
func commandError(err error) error {
	if err == nil {
		return nil
	}
	var lr *loginRequiredError
	if errors.As(err, &lr) {
		return err
	}
	if internal.IsAuthFailure(err) {
		return &loginRequiredError{err: err}
	}
	return err
}

func bindFlags() {
	bindings := map[string]string{
		internal.KeyAPIURL:         "api-url",
		internal.KeyConfigDir:      "config-dir",
		internal.KeyRequestTimeout: "timeout",
		internal.KeyRateLimit:      "rate-limit",
		internal.KeyCodeStyle:      "code-style",
		internal.KeyWidth:          "width",
		internal.KeyNoColor:        "no-color",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag, err))
		}
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&cfgFile, "config", "", "Config file (default $XDG_CONFIG_HOME/devchat/config.toml)")
	flags.String("api-url", internal.DefaultAPIURL, "Backend base URL")
	flags.String("config-dir", "", "Directory for credentials and cache")
	flags.Duration("timeout", internal.DefaultTimeout, "Per-request timeout")
	flags.Float64("rate-limit", 0, "Maximum backend requests per second (0 = unlimited)")
	flags.String("code-style", "monokai", "Syntax highlighting style")
	flags.Int("width", 80, "Wrap width for rendered replies")
	flags.Bool("no-color", false, "Disable colors")
	bindFlags()

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
