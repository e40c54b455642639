package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sentinel-Gate/invoke-core/internal/adapter/outbound/authcred"
)

var hashSecretCmd = &cobra.Command{
	Use:   "hash-secret [secret]",
	Short: "Generate an Argon2id hash for credential.hashed_secret",
	Long: `Generate an Argon2id PHC-format hash of a secret for use in config.

The output can be pasted directly into credential.hashed_secret.

Example:
  invoke-demo hash-secret "my-caller-credential"

Security note: the secret will appear in shell history. Prefer piping it
from an environment variable:
  invoke-demo hash-secret "$CALLER_SECRET"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hashed, err := authcred.Hash(args[0])
		if err != nil {
			return fmt.Errorf("hash-secret: %w", err)
		}
		fmt.Println(hashed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashSecretCmd)
}
