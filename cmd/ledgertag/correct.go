package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/calebds/ledgertag/internal/model"
)

func correctCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "correct",
		Short: "Record and inspect category corrections",
	}

	cmd.AddCommand(addCorrectionCmd())
	cmd.AddCommand(listCorrectionsCmd())
	cmd.AddCommand(clearCorrectionsCmd())

	return cmd
}

func addCorrectionCmd() *cobra.Command {
	var (
		amount float64
		txnID  string
		fromID int
		toID   int
	)
	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Record a correction for a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if txnID == "" {
				txnID = uuid.NewString()
			}
			txn := model.Transaction{
				ID:          txnID,
				Date:        time.Now(),
				Description: args[0],
				Amount:      amount,
			}

			var original *int
			if cmd.Flags().Changed("from") {
				original = &fromID
			}

			if err := eng.RecordCorrection(ctx, txn, original, toID); err != nil {
				return fmt.Errorf("failed to record correction: %w", err)
			}

			fmt.Println("Correction recorded")
			return nil
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "transaction amount")
	cmd.Flags().StringVar(&txnID, "transaction", "", "transaction ID")
	cmd.Flags().IntVar(&fromID, "from", 0, "original category ID")
	cmd.Flags().IntVar(&toID, "to", 0, "corrected category ID (required)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func listCorrectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded corrections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			corrections, err := eng.Corrections(ctx)
			if err != nil {
				return fmt.Errorf("failed to list corrections: %w", err)
			}

			if len(corrections) == 0 {
				fmt.Println("No corrections recorded.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, "WHEN\tDESCRIPTION\tAMOUNT\tFROM\tTO")
			for _, c := range corrections {
				from := "-"
				if c.OriginalCategoryID != nil {
					from = fmt.Sprintf("%d", *c.OriginalCategoryID)
				}
				fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%d\n",
					c.Timestamp.Format("2006-01-02 15:04"),
					c.Transaction.Description, c.Transaction.Amount,
					from, c.NewCategoryID)
			}

			return nil
		},
	}
}

func clearCorrectionsCmd() *cobra.Command {
	var confirmed bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the correction ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if !confirmed {
				return fmt.Errorf("refusing to clear without --yes")
			}

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := eng.ClearAllData(ctx); err != nil {
				return err
			}

			fmt.Println("Correction ledger cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "confirm the clear")
	return cmd
}
