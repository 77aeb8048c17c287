package taxonomy

import "github.com/calebds/ledgertag/internal/model"

// SystemCategories returns the built-in category set. These are seeded on
// first run, protected from deletion and reparenting, and restored by Reset.
func SystemCategories() []model.Category {
	return []model.Category{
		{Name: "Food & Dining", Icon: "fork.knife", Color: "#E8590C", SortOrder: 10, IsSystem: true, IsActive: true},
		{Name: "Shopping", Icon: "bag", Color: "#9C36B5", SortOrder: 20, IsSystem: true, IsActive: true},
		{Name: "Transportation", Icon: "car", Color: "#1971C2", SortOrder: 30, IsSystem: true, IsActive: true},
		{Name: "Entertainment", Icon: "tv", Color: "#E64980", SortOrder: 40, IsSystem: true, IsActive: true},
		{Name: "Utilities", Icon: "bolt", Color: "#F08C00", SortOrder: 50, IsSystem: true, IsActive: true},
		{Name: "Subscriptions", Icon: "arrow.clockwise", Color: "#6741D9", SortOrder: 60, IsSystem: true, IsActive: true},
		{Name: "Healthcare", Icon: "cross.case", Color: "#C2255C", SortOrder: 70, IsSystem: true, IsActive: true},
		{Name: "Travel", Icon: "airplane", Color: "#0C8599", SortOrder: 80, IsSystem: true, IsActive: true},
		{Name: "Housing", Icon: "house", Color: "#2F9E44", SortOrder: 90, IsSystem: true, IsActive: true},
		{Name: "Income", Icon: "dollarsign.circle", Color: "#099268", SortOrder: 100, IsSystem: true, IsActive: true},
		{Name: "Fees", Icon: "exclamationmark.circle", Color: "#868E96", SortOrder: 110, IsSystem: true, IsActive: true},
		{Name: "Payments", Icon: "arrow.left.arrow.right", Color: "#495057", SortOrder: 120, IsSystem: true, IsActive: true},
		{Name: "Other", Icon: "questionmark.circle", Color: "#ADB5BD", SortOrder: 130, IsSystem: true, IsActive: true},
	}
}
