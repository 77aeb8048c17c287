package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/calebds/ledgertag/internal/model"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage categorization rules",
	}

	cmd.AddCommand(listRulesCmd())
	cmd.AddCommand(addRuleCmd())
	cmd.AddCommand(deleteRuleCmd())

	return cmd
}

func listRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active rules in evaluation order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			_, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rules, err := store.GetActiveRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to list rules: %w", err)
			}

			if len(rules) == 0 {
				fmt.Println("No active rules.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, "ID\tNAME\tPRIORITY\tCONFIDENCE\tMATCHES\tCONDITIONS")
			for _, rule := range rules {
				fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\t%d\t%s\n",
					rule.ID, rule.RuleName, rule.Priority, rule.Confidence,
					rule.MatchCount, rule.RuleDescription)
			}

			return nil
		},
	}
}

func addRuleCmd() *cobra.Command {
	var (
		categoryID int
		contains   string
		exact      string
		descPart   string
		regex      string
		sign       string
		amountMin  float64
		amountMax  float64
		priority   int
		confidence float64
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a categorization rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rule := model.CategoryRule{
				RuleName:            args[0],
				CategoryID:          categoryID,
				MerchantContains:    contains,
				MerchantExact:       exact,
				DescriptionContains: descPart,
				RegexPattern:        regex,
				AmountSign:          model.AmountSign(sign),
				Priority:            priority,
				Confidence:          confidence,
				IsActive:            true,
			}
			if cmd.Flags().Changed("amount-min") {
				rule.AmountMin = &amountMin
			}
			if cmd.Flags().Changed("amount-max") {
				rule.AmountMax = &amountMax
			}

			if err := eng.SaveRule(ctx, &rule); err != nil {
				return fmt.Errorf("failed to save rule: %w", err)
			}

			fmt.Printf("Created rule %q (id %d): %s\n", rule.RuleName, rule.ID, rule.RuleDescription)
			return nil
		},
	}
	cmd.Flags().IntVar(&categoryID, "category", 0, "target category ID (required)")
	cmd.Flags().StringVar(&contains, "merchant-contains", "", "case-insensitive substring condition")
	cmd.Flags().StringVar(&exact, "merchant-exact", "", "case-insensitive exact match condition")
	cmd.Flags().StringVar(&descPart, "description-contains", "", "secondary substring condition")
	cmd.Flags().StringVar(&regex, "regex", "", "regex condition (exclusive with textual conditions)")
	cmd.Flags().StringVar(&sign, "sign", "any", "amount sign filter (any, positive, negative)")
	cmd.Flags().Float64Var(&amountMin, "amount-min", 0, "inclusive lower bound on absolute amount")
	cmd.Flags().Float64Var(&amountMax, "amount-max", 0, "inclusive upper bound on absolute amount")
	cmd.Flags().IntVar(&priority, "priority", model.PriorityDefault, "evaluation priority (higher first)")
	cmd.Flags().Float64Var(&confidence, "confidence", 0.8, "static confidence weight (0-1)")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func deleteRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid rule ID %q", args[0])
			}

			_, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteRule(ctx, id); err != nil {
				return fmt.Errorf("failed to delete rule: %w", err)
			}

			fmt.Printf("Deleted rule %d\n", id)
			return nil
		},
	}
}
