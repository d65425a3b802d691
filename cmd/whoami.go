package cmd

import (
	"fmt"
	"io"

	"github.com/iksnae/devchat/internal"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := internal.RequireAuth(newApp(cfg).store)
		if err != nil {
			return commandError(err)
		}
		printProfile(cmd.OutOrStdout(), profile)
		return nil
	},
}

func printProfile(w io.Writer, p internal.Profile) {
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render(p.Name), idStyle.Render("<"+p.Email+">"))
	if p.Picture != "" {
		fmt.Fprintf(w, "Picture: %s\n", p.Picture)
	}
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
