package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zatekoja/healthmarket/internal/evaluation"
	"github.com/zatekoja/healthmarket/internal/infrastructure/observability"
	"github.com/zatekoja/healthmarket/pkg/config"
)

func evaluateCmd() *cobra.Command {
	var goldenPath string
	var thresholds evaluation.GuardrailConfig

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score specialty recommendations against a labeled symptom set",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

			cases, err := evaluation.LoadGoldenCases(goldenPath)
			if err != nil {
				return err
			}
			if err := evaluation.ValidateGoldenCases(cases); err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := evaluation.NewRunner(a.recommendations()).Run(ctx, cases)
			if err != nil {
				return fmt.Errorf("evaluation failed: %w", err)
			}

			out, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if violations := evaluation.NewGuardrails(thresholds).Check(summary); len(violations) > 0 {
				return fmt.Errorf("guardrails failed: %s", strings.Join(violations, "; "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&goldenPath, "golden", "config/golden_symptoms.json", "path to the labeled symptom cases")
	cmd.Flags().Float64Var(&thresholds.MinExactAccuracy, "min-exact", 0, "fail when exact accuracy is below this value")
	cmd.Flags().Float64Var(&thresholds.MinAcceptableAccuracy, "min-acceptable", 0, "fail when acceptable accuracy is below this value")
	cmd.Flags().Float64Var(&thresholds.MaxErrorRate, "max-error-rate", 0, "fail when the share of failed cases is above this value")
	return cmd
}
