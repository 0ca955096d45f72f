package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"merchant-kyc-portal/config"
	"merchant-kyc-portal/logger"
	"merchant-kyc-portal/orchestrator"
	"merchant-kyc-portal/review"
	"merchant-kyc-portal/shared"
	"merchant-kyc-portal/store"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "console",
		Short: "Operator console for merchant onboarding",
	}
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(resultCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(decideCmd(shared.DecisionApprove))
	rootCmd.AddCommand(decideCmd(shared.DecisionReject))
	rootCmd.AddCommand(wizardCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env holds the connections a command needs. Fields are nil unless requested.
type env struct {
	log       *zap.Logger
	temporal  client.Client
	db        *store.MongoDB
	merchants *store.MerchantStore
}

func connect(ctx context.Context, withTemporal, withMongo bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	zl, err := logger.New(cfg.ServiceName+"-console", cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	e := &env{log: zl}
	if withTemporal {
		if e.temporal, err = orchestrator.Dial(cfg.Temporal, zl); err != nil {
			return nil, fmt.Errorf("connect to temporal: %w", err)
		}
	}
	if withMongo {
		if e.db, err = store.Connect(ctx, cfg.Mongo); err != nil {
			e.close()
			return nil, fmt.Errorf("connect to mongodb: %w", err)
		}
		e.merchants = store.NewMerchantStore(e.db.Database)
	}
	return e, nil
}

func (e *env) close() {
	if e.temporal != nil {
		e.temporal.Close()
	}
	if e.db != nil {
		_ = e.db.Close(context.Background())
	}
	_ = e.log.Sync()
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <merchantId>",
		Short: "Query the onboarding workflow of a merchant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect(cmd.Context(), true, false)
			if err != nil {
				return err
			}
			defer e.close()

			resp, err := orchestrator.New(e.temporal).Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}
}

func resultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "result <merchantId>",
		Short: "Wait for the onboarding workflow of a merchant to finish",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect(cmd.Context(), true, false)
			if err != nil {
				return err
			}
			defer e.close()

			result, err := orchestrator.New(e.temporal).Result(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List merchant profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect(cmd.Context(), false, true)
			if err != nil {
				return err
			}
			defer e.close()

			profiles, err := e.merchants.List(cmd.Context(), shared.OnboardingStatus(status))
			if err != nil {
				return err
			}
			writeProfiles(cmd.OutOrStdout(), profiles)
			return nil
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "", "only list merchants with this onboarding status")
	return cmd
}

func decideCmd(decision shared.Decision) *cobra.Command {
	var reason, notes, reviewer string
	cmd := &cobra.Command{
		Use:   string(decision) + " <merchantId>",
		Short: "Record a review decision for a merchant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect(cmd.Context(), true, true)
			if err != nil {
				return err
			}
			defer e.close()

			svc := review.New(e.merchants, orchestrator.New(e.temporal), e.log)
			d, err := svc.Decide(cmd.Context(), args[0], shared.ReviewDecision{
				Decision:   decision,
				Reason:     reason,
				Notes:      notes,
				ReviewerID: reviewer,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Merchant %s %s\n", args[0], d.Decision.Status())
			return nil
		},
	}
	cmd.Flags().StringVarP(&reason, "reason", "r", "", "reason shown to the merchant")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "internal review notes")
	cmd.Flags().StringVar(&reviewer, "reviewer", "console", "reviewer id recorded with the decision")
	return cmd
}

func wizardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wizard <merchantId>",
		Short: "Walk through the onboarding steps of a merchant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect(cmd.Context(), false, true)
			if err != nil {
				return err
			}
			defer e.close()

			p, err := e.merchants.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return runWizard(cmd.InOrStdin(), cmd.OutOrStdout(), p.Flags())
		},
	}
}
