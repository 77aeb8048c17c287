package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/calebds/ledgertag/internal/learning"
)

func suggestionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggestions",
		Short: "Review rules learned from your corrections",
	}

	cmd.AddCommand(listSuggestionsCmd())
	cmd.AddCommand(acceptSuggestionCmd())
	cmd.AddCommand(dismissSuggestionCmd())

	return cmd
}

func listSuggestionsCmd() *cobra.Command {
	var (
		minOccurrences int
		minAgreement   float64
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Refresh and list rule suggestions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			suggestions, err := eng.RefreshSuggestions(ctx, minOccurrences, minAgreement)
			if err != nil {
				return fmt.Errorf("failed to refresh suggestions: %w", err)
			}

			if len(suggestions) == 0 {
				fmt.Println("No suggestions. Keep correcting transactions and check back.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, "MERCHANT\tCATEGORY\tCONFIDENCE\tSEEN\tAVG AMOUNT")
			for _, s := range suggestions {
				categoryName := fmt.Sprintf("#%d", s.SuggestedCategoryID)
				if category, catErr := eng.Category(ctx, s.SuggestedCategoryID); catErr == nil {
					categoryName = category.Name
				}
				fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\t%.2f\n",
					s.MerchantPattern, categoryName, s.Confidence,
					s.TransactionCount, s.AverageAmount)
			}

			return nil
		},
	}
	cmd.Flags().IntVar(&minOccurrences, "min-occurrences", learning.DefaultMinOccurrences, "corrections required before suggesting")
	cmd.Flags().Float64Var(&minAgreement, "min-agreement", learning.DefaultMinAgreement, "required vote share for the winning category")
	return cmd
}

func acceptSuggestionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <merchant-pattern>",
		Short: "Promote a suggestion into a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if _, err := eng.RefreshSuggestions(ctx, 0, 0); err != nil {
				return fmt.Errorf("failed to refresh suggestions: %w", err)
			}

			for _, s := range eng.GetSuggestions() {
				if s.MerchantPattern != args[0] {
					continue
				}
				rule, promoteErr := eng.CreateRuleFromSuggestion(ctx, s)
				if promoteErr != nil {
					return promoteErr
				}
				fmt.Printf("Created rule %q (id %d)\n", rule.RuleName, rule.ID)
				return nil
			}

			return fmt.Errorf("no suggestion for merchant %q", args[0])
		},
	}
}

func dismissSuggestionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss <merchant-pattern>",
		Short: "Dismiss a suggestion for this session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, store, err := initEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			eng.DismissSuggestion(args[0])
			fmt.Printf("Dismissed %q\n", args[0])
			return nil
		},
	}
}
