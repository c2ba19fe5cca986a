package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zoea-platform/zmig/config"
)

// NewCredentialsCommand creates the credentials command group.
func NewCredentialsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage stored credentials",
		Long: `Manage stored credentials.

The legacy-store password can be kept in the OS keyring instead of the
config file or environment. zmig falls back to the keyring when neither
V1_DB_PASSWORD nor the config file provides one.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set-legacy-password",
		Short: "Store the legacy database password in the OS keyring",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			fmt.Print("Legacy database password: ")
			secret, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			if len(secret) == 0 {
				return fmt.Errorf("password must not be empty")
			}
			if err := config.StoreLegacyPassword(string(secret)); err != nil {
				return err
			}
			fmt.Println("Stored.")
			return nil
		},
	})

	return cmd
}
