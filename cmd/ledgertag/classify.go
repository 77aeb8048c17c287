package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/calebds/ledgertag/internal/model"
)

func classifyCmd() *cobra.Command {
	var (
		amount    float64
		date      string
		hintsOnly bool
	)
	cmd := &cobra.Command{
		Use:   "classify <description>",
		Short: "Classify a transaction",
		Long:  `Run a transaction description (and amount) through the rule engine and print the decision.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if hintsOnly {
				category, confidence, hintErr := eng.SuggestCategoryForMerchant(ctx, args[0])
				if hintErr != nil {
					return hintErr
				}
				if category == nil {
					fmt.Println("No brand hint.")
					return nil
				}
				fmt.Printf("%s (confidence %.2f)\n", category.Name, confidence)
				return nil
			}

			txnDate := time.Now()
			if date != "" {
				parsed, parseErr := time.Parse("2006-01-02", date)
				if parseErr != nil {
					return fmt.Errorf("invalid date %q (want YYYY-MM-DD)", date)
				}
				txnDate = parsed
			}

			txn := model.Transaction{
				ID:          uuid.NewString(),
				Date:        txnDate,
				Description: args[0],
				Amount:      amount,
			}

			category, confidence, err := eng.Classify(ctx, txn)
			if err != nil {
				return fmt.Errorf("classification failed: %w", err)
			}

			if category == nil {
				fmt.Println("Uncategorized (confidence 0.00)")
				return nil
			}

			path, pathErr := eng.HierarchyPath(ctx, category.ID)
			if pathErr != nil {
				path = category.Name
			}
			fmt.Printf("%s (confidence %.2f)\n", path, confidence)
			return nil
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "transaction amount (negative for debits)")
	cmd.Flags().StringVar(&date, "date", "", "transaction date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&hintsOnly, "hint", false, "brand-table lookup only, skip the rule pass")
	return cmd
}
