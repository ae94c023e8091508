package main

import (
	"fmt"
	"os"

	"spotmarket/internal/cli"

	"github.com/spf13/cobra"
)

var version = "develop"

func main() {
	rootCmd := &cobra.Command{
		Use:   "spotctl",
		Short: "Operator tool for the spot market",
		Long: `spotctl manages seller keys, signs listing requests offline and seeds
the parking slot inventory of a spot market database.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(cli.NewKeygenCmd())
	rootCmd.AddCommand(cli.NewAddressCmd())
	rootCmd.AddCommand(cli.NewSignCmd())
	rootCmd.AddCommand(cli.NewSeedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
