// Package cli holds the spotctl subcommands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"spotmarket/internal/signature"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewKeygenCmd creates the keygen command
func NewKeygenCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "keygen <path>",
		Short: "Generate a secp256k1 key",
		Long:  `Writes a new hex encoded private key to <path> and prints its address.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				return fmt.Errorf("failed to create key directory: %w", err)
			}

			key, err := crypto.GenerateKey()
			if err != nil {
				return fmt.Errorf("failed to generate key: %w", err)
			}
			if err := crypto.SaveECDSA(path, key); err != nil {
				return fmt.Errorf("failed to save key: %w", err)
			}

			green := color.New(color.FgGreen).SprintFunc()
			fmt.Fprintf(cmd.OutOrStdout(), "%s key written to %s\n", green("✓"), path)
			fmt.Fprintf(cmd.OutOrStdout(), "  Address: %s\n", signature.Address(key))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing key file")

	return cmd
}

// NewAddressCmd creates the address command
func NewAddressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address <path>",
		Short: "Print the address of a key file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := crypto.LoadECDSA(args[0])
			if err != nil {
				return fmt.Errorf("failed to load key: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), signature.Address(key))
			return nil
		},
	}
}
