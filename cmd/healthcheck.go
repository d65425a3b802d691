package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/devchat/internal"
	"github.com/spf13/cobra"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check configuration, login state and backend connectivity",
	Long: `Check the health of devchat by verifying:
  • Config directory detection
  • Stored login
  • Session list cache
  • Backend reachability (when logged in)

Use --verbose for paths and details. This command is useful for debugging
setup issues, especially in CI/CD environments.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		a := newApp(cfg)

		fmt.Fprintln(out, sectionStyle.Render("🔍 devchat Health Check"))
		fmt.Fprintln(out)

		// Step 1: Config directory
		fmt.Fprintln(out, infoStyle.Render("Step 1: Detecting config directory..."))
		if cfg.Paths.Exists() {
			fmt.Fprintln(out, successStyle.Render("✅ Config directory found"))
		} else {
			fmt.Fprintln(out, warningStyle.Render("⚠️  Config directory does not exist yet (created on login)"))
		}
		if verbose {
			fmt.Fprintf(out, "   Directory: %s\n", cfg.ConfigDir)
			fmt.Fprintf(out, "   Backend: %s\n", cfg.APIURL)
		}
		fmt.Fprintln(out)

		// Step 2: Stored login
		fmt.Fprintln(out, infoStyle.Render("Step 2: Checking stored login..."))
		loggedIn := checkLogin(out, a)
		fmt.Fprintln(out)

		// Step 3: Session list cache
		fmt.Fprintln(out, infoStyle.Render("Step 3: Checking session list cache..."))
		checkCache(out, a)
		fmt.Fprintln(out)

		// Step 4: Backend
		fmt.Fprintln(out, infoStyle.Render("Step 4: Contacting backend..."))
		var backendErr error
		sessionCount := 0
		if !loggedIn {
			fmt.Fprintln(out, warningStyle.Render("⚠️  Skipped: log in to test authenticated requests"))
		} else {
			sessions, err := a.client.ListSessions(cmd.Context())
			switch {
			case err == nil:
				sessionCount = len(sessions)
				fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Backend reachable, %d session(s)", sessionCount)))
			case internal.IsAuthFailure(err):
				backendErr = err
				fmt.Fprintln(out, errorStyle.Render("❌ Backend rejected the stored login (it has been cleared)"))
			default:
				backendErr = err
				fmt.Fprintln(out, errorStyle.Render("❌ Backend unreachable:"), err)
			}
		}
		fmt.Fprintln(out)

		// Summary
		fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		fmt.Fprintln(out)

		switch {
		case backendErr != nil:
			fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
			if internal.IsCIEnvironment() {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Note: In CI the backend may not be running; set DEVCHAT_API_URL.")
			}
			return fmt.Errorf("health check failed: %w", backendErr)
		case !loggedIn:
			fmt.Fprintln(out, warningStyle.Render("⚠️  Not logged in"))
			fmt.Fprintln(out, "   • Run 'devchat login' to sign in")
			return nil
		default:
			fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("   • Sessions: %d found", sessionCount)))
			return nil
		}
	},
}

func checkLogin(out io.Writer, a *app) bool {
	err := a.store.Check()
	var corrupt *internal.StorageCorruptionError
	switch {
	case err == nil:
		_, profile, _ := a.store.Get()
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Logged in as %s", profile.Email)))
		if verbose {
			fmt.Fprintf(out, "   Credentials: %s\n", a.store.Path())
		}
		return true
	case errors.As(err, &corrupt):
		fmt.Fprintln(out, warningStyle.Render("⚠️  Stored login was unreadable and has been cleared"))
	default:
		fmt.Fprintln(out, warningStyle.Render("⚠️  Not logged in"))
	}
	return false
}

func checkCache(out io.Writer, a *app) {
	path := a.cfg.Paths.CachePath()
	if !a.cfg.Paths.Exists() {
		fmt.Fprintln(out, warningStyle.Render("⚠️  No cache yet"))
		return
	}
	cm, err := internal.NewCacheManager(path)
	if err != nil {
		fmt.Fprintln(out, warningStyle.Render("⚠️  Cache unavailable:"), err)
		return
	}
	defer cm.Close()

	index, err := cm.LoadIndex()
	switch {
	case err != nil:
		fmt.Fprintln(out, warningStyle.Render("⚠️  Cache unreadable:"), err)
	case index == nil:
		fmt.Fprintln(out, successStyle.Render("✅ Cache ready (empty)"))
	default:
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Cache holds %d session(s)", len(index.Sessions))))
		if _, profile, ok := a.store.Get(); ok {
			if valid, _ := cm.IsCacheValid(a.cfg.APIURL, profile.Email); !valid {
				fmt.Fprintln(out, warningStyle.Render("⚠️  Cached list belongs to another backend or account and will be ignored"))
			}
		}
		if verbose {
			fmt.Fprintf(out, "   Account: %s\n", index.Metadata.UserEmail)
			fmt.Fprintf(out, "   Updated: %s\n", index.Metadata.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
	}
	if verbose {
		fmt.Fprintf(out, "   Database: %s\n", path)
	}
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}
