// Package model defines the core domain models used throughout the application.
package model

import "time"

// Category represents a node in the user-facing classification taxonomy.
// Categories form a tree: ParentID is nil for roots and must never create a cycle.
type Category struct {
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ParentID     *int
	BudgetAmount *float64
	Name         string
	Icon         string
	Color        string
	ID           int
	SortOrder    int
	IsSystem     bool
	IsActive     bool
}

// IsRoot reports whether the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}
