package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/calebds/ledgertag/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage the category taxonomy",
		Long:  `List, add, inspect, and reset the categories used for transaction classification.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(pathCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())
	cmd.AddCommand(resetCategoriesCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	var rootsOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var categories []model.Category
			if rootsOnly {
				categories, err = eng.RootCategories(ctx)
			} else {
				categories, err = eng.Categories(ctx)
			}
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}

			if len(categories) == 0 {
				fmt.Println("No categories found. Run 'ledgertag migrate' to seed the defaults.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, "ID\tNAME\tPARENT\tSYSTEM")
			for _, cat := range categories {
				parent := "-"
				if cat.ParentID != nil {
					parent = strconv.Itoa(*cat.ParentID)
				}
				system := ""
				if cat.IsSystem {
					system = "yes"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", cat.ID, cat.Name, parent, system)
			}

			return nil
		},
	}
	cmd.Flags().BoolVar(&rootsOnly, "roots", false, "only show root categories")
	return cmd
}

func addCategoryCmd() *cobra.Command {
	var (
		parentID  int
		icon      string
		color     string
		sortOrder int
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a custom category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			category := model.Category{
				Name:      args[0],
				Icon:      icon,
				Color:     color,
				SortOrder: sortOrder,
				IsActive:  true,
			}
			if cmd.Flags().Changed("parent") {
				category.ParentID = &parentID
			}

			if err := eng.CreateCategory(ctx, &category); err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			fmt.Printf("Created category %q (id %d)\n", category.Name, category.ID)
			return nil
		},
	}
	cmd.Flags().IntVar(&parentID, "parent", 0, "parent category ID")
	cmd.Flags().StringVar(&icon, "icon", "", "icon name")
	cmd.Flags().StringVar(&color, "color", "", "hex color")
	cmd.Flags().IntVar(&sortOrder, "sort", 0, "sort order")
	return cmd
}

func pathCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path <id>",
		Short: "Show a category's hierarchy path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid category ID %q", args[0])
			}

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			path, err := eng.HierarchyPath(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to resolve path: %w", err)
			}

			fmt.Println(path)
			return nil
		},
	}
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a custom category and its rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid category ID %q", args[0])
			}

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := eng.Taxonomy().Delete(ctx, id); err != nil {
				return fmt.Errorf("failed to delete category: %w", err)
			}

			fmt.Printf("Deleted category %d\n", id)
			return nil
		},
	}
}

func resetCategoriesCmd() *cobra.Command {
	var confirmed bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the built-in category set",
		Long:  `Remove all custom categories (and the rules referencing them) and restore the system defaults.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if !confirmed {
				return fmt.Errorf("refusing to reset without --yes")
			}

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := eng.ResetCategories(ctx); err != nil {
				return fmt.Errorf("failed to reset categories: %w", err)
			}

			fmt.Println("Categories reset to system defaults")
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "confirm the reset")
	return cmd
}
