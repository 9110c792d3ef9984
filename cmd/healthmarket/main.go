package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/zatekoja/healthmarket/pkg/secrets"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "healthmarket",
		Short: "Healthcare marketplace API: doctors, pharmacy and lab tests",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			result, err := secrets.ApplyVaultSecrets(cmd.Context(), secrets.LoadVaultConfig())
			if err != nil {
				return fmt.Errorf("failed to load vault secrets: %w", err)
			}
			if result.Enabled {
				log.Info().Str("path", result.Path).Int("loaded", result.Loaded).Int("skipped", result.Skipped).Msg("vault secrets applied")
			}
			return nil
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(evaluateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
