package cmd

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/iksnae/devchat/internal"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

var (
	loginIDToken string
	loginForce   bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with an identity-provider ID token",
	Long: `Exchange a Google ID token for a devchat credential.

The token is taken from --id-token, the DEVCHAT_ID_TOKEN environment
variable, or the first line of standard input (prompted for on a terminal).
The credential and your profile are stored in the config directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cfg)
		out := cmd.OutOrStdout()

		if _, profile, ok := a.store.Get(); ok && !loginForce {
			fmt.Fprintf(out, "Already logged in as %s <%s>. Use --force to sign in again.\n", profile.Name, profile.Email)
			return nil
		}

		idToken, err := readIDToken(cmd.InOrStdin())
		if err != nil {
			return err
		}

		var profile internal.Profile
		err = internal.ShowProgress(cmd.Context(), "Signing in...", func() error {
			var loginErr error
			profile, loginErr = a.client.Login(cmd.Context(), idToken)
			return loginErr
		})
		if err != nil {
			if internal.HTTPStatus(err) == http.StatusUnauthorized {
				return fmt.Errorf("login rejected: the ID token is invalid or expired")
			}
			return fmt.Errorf("login failed: %w", err)
		}

		fmt.Fprintf(out, "Logged in as %s <%s>\n", profile.Name, profile.Email)
		return nil
	},
}

// readIDToken resolves the ID token from the flag, the environment or stdin
func readIDToken(in io.Reader) (string, error) {
	if token := strings.TrimSpace(loginIDToken); token != "" {
		return token, nil
	}
	if token := strings.TrimSpace(v.GetString(internal.KeyIDToken)); token != "" {
		return token, nil
	}

	if f, ok := in.(*os.File); ok && internal.IsTerminal(f) {
		line := liner.NewLiner()
		defer line.Close()
		token, err := line.PasswordPrompt("ID token: ")
		if err != nil {
			return "", fmt.Errorf("failed to read ID token: %w", err)
		}
		return strings.TrimSpace(token), nil
	}

	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read ID token: %w", err)
	}
	return "", nil
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVar(&loginIDToken, "id-token", "", "Identity-provider ID token")
	loginCmd.Flags().BoolVarP(&loginForce, "force", "f", false, "Sign in again even if already logged in")
}
