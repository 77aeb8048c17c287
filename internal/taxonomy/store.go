// Package taxonomy owns the category tree: creation, hierarchy queries,
// cycle prevention, and the built-in system category set.
package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/calebds/ledgertag/internal/common"
	"github.com/calebds/ledgertag/internal/model"
	"github.com/calebds/ledgertag/internal/service"
)

// maxDepth bounds ancestor walks. A well-formed tree never approaches
// this; hitting it means the stored hierarchy is corrupt.
const maxDepth = 100

// PathSeparator joins category names in hierarchy paths.
const PathSeparator = " > "

// Store manages the category hierarchy. Writes are serialized by a single
// mutex; reads go straight to storage.
type Store struct {
	storage service.Storage
	mu      sync.Mutex
}

// NewStore creates a taxonomy store backed by the given storage.
func NewStore(storage service.Storage) *Store {
	return &Store{storage: storage}
}

// Categories returns all active categories.
func (s *Store) Categories(ctx context.Context) ([]model.Category, error) {
	return s.storage.GetCategories(ctx)
}

// Category returns one category by ID.
func (s *Store) Category(ctx context.Context, id int) (*model.Category, error) {
	return s.storage.GetCategoryByID(ctx, id)
}

// RootCategories returns active categories with no parent, ordered by sort order.
func (s *Store) RootCategories(ctx context.Context) ([]model.Category, error) {
	return s.storage.GetChildCategories(ctx, nil)
}

// Children returns the active categories directly under the given parent,
// ordered by sort order.
func (s *Store) Children(ctx context.Context, parentID int) ([]model.Category, error) {
	return s.storage.GetChildCategories(ctx, &parentID)
}

// Create validates and inserts a new category. It rejects empty names,
// case-insensitive sibling name collisions, and parents that do not
// resolve to an existing active category.
func (s *Store) Create(ctx context.Context, category *model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if category == nil {
		return fmt.Errorf("%w: category is nil", common.ErrValidation)
	}
	if strings.TrimSpace(category.Name) == "" {
		return fmt.Errorf("%w: category name is empty", common.ErrValidation)
	}

	if category.ParentID != nil {
		parent, err := s.storage.GetCategoryByID(ctx, *category.ParentID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return fmt.Errorf("%w: parent %d", common.ErrDanglingParent, *category.ParentID)
			}
			return fmt.Errorf("failed to look up parent %d: %w", *category.ParentID, err)
		}
		if !parent.IsActive {
			return fmt.Errorf("%w: parent %d is inactive", common.ErrDanglingParent, parent.ID)
		}
		// The parent chain must already terminate at a root.
		if _, err := s.ancestorChain(ctx, parent.ID); err != nil {
			return err
		}
	}

	if err := s.checkSiblingName(ctx, category.Name, category.ParentID, 0); err != nil {
		return err
	}

	category.IsActive = true
	return s.storage.CreateCategory(ctx, category)
}

// Reparent moves a category under a new parent (nil makes it a root).
// System categories cannot be reparented. The proposed ancestor chain is
// walked before committing and rejected if it revisits the moved node.
func (s *Store) Reparent(ctx context.Context, id int, newParentID *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	category, err := s.storage.GetCategoryByID(ctx, id)
	if err != nil {
		return err
	}
	if category.IsSystem {
		return fmt.Errorf("%w: cannot reparent %q", common.ErrSystemCategory, category.Name)
	}

	if newParentID != nil {
		if *newParentID == id {
			return fmt.Errorf("%w: category %d cannot be its own parent", common.ErrCycle, id)
		}
		parent, parentErr := s.storage.GetCategoryByID(ctx, *newParentID)
		if parentErr != nil {
			if errors.Is(parentErr, common.ErrNotFound) {
				return fmt.Errorf("%w: parent %d", common.ErrDanglingParent, *newParentID)
			}
			return fmt.Errorf("failed to look up parent %d: %w", *newParentID, parentErr)
		}
		chain, chainErr := s.ancestorChain(ctx, parent.ID)
		if chainErr != nil {
			return chainErr
		}
		for _, ancestor := range chain {
			if ancestor.ID == id {
				return fmt.Errorf("%w: %q is an ancestor of the proposed parent", common.ErrCycle, category.Name)
			}
		}
	}

	if err := s.checkSiblingName(ctx, category.Name, newParentID, category.ID); err != nil {
		return err
	}

	category.ParentID = newParentID
	return s.storage.UpdateCategory(ctx, category)
}

// Delete soft-deletes a custom category and its descendants, deactivating
// every rule that references them first. System categories are protected.
func (s *Store) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	category, err := s.storage.GetCategoryByID(ctx, id)
	if err != nil {
		return err
	}
	if category.IsSystem {
		return fmt.Errorf("%w: cannot delete %q", common.ErrSystemCategory, category.Name)
	}

	ids, err := s.subtreeIDs(ctx, id)
	if err != nil {
		return err
	}

	for _, catID := range ids {
		n, ruleErr := s.storage.DeactivateRulesByCategory(ctx, catID)
		if ruleErr != nil {
			return ruleErr
		}
		if n > 0 {
			slog.Info("deactivated rules for deleted category", "category_id", catID, "rules", n)
		}
		if deactivateErr := s.storage.DeactivateCategory(ctx, catID); deactivateErr != nil {
			return deactivateErr
		}
	}

	return nil
}

// HierarchyPath walks a category's parents to the root and joins the names
// from root to leaf. Returns common.ErrNotFound for an unknown ID.
func (s *Store) HierarchyPath(ctx context.Context, id int) (string, error) {
	chain, err := s.ancestorChain(ctx, id)
	if err != nil {
		return "", err
	}

	// ancestorChain yields leaf-first; the path reads root-first.
	names := make([]string, len(chain))
	for i, cat := range chain {
		names[len(chain)-1-i] = cat.Name
	}
	return strings.Join(names, PathSeparator), nil
}

// Reset removes all custom categories (cascading to the rules that
// reference them) and restores the built-in system category set.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.storage.DeleteCustomCategories(ctx); err != nil {
		return fmt.Errorf("failed to remove custom categories: %w", err)
	}

	if err := s.ensureDefaultsLocked(ctx); err != nil {
		return err
	}

	slog.Info("taxonomy reset to system defaults")
	return nil
}

// EnsureDefaults inserts any missing system categories and reactivates
// deactivated ones. Safe to call repeatedly.
func (s *Store) EnsureDefaults(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureDefaultsLocked(ctx)
}

func (s *Store) ensureDefaultsLocked(ctx context.Context) error {
	existing, err := s.storage.GetAllCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	byName := make(map[string]*model.Category, len(existing))
	for i := range existing {
		byName[strings.ToLower(existing[i].Name)] = &existing[i]
	}

	for _, def := range SystemCategories() {
		current, ok := byName[strings.ToLower(def.Name)]
		if !ok {
			cat := def
			if err := s.storage.CreateCategory(ctx, &cat); err != nil {
				return fmt.Errorf("failed to seed system category %q: %w", def.Name, err)
			}
			continue
		}
		if !current.IsActive || !current.IsSystem {
			current.IsActive = true
			current.IsSystem = true
			if err := s.storage.UpdateCategory(ctx, current); err != nil {
				return fmt.Errorf("failed to restore system category %q: %w", def.Name, err)
			}
		}
	}

	return nil
}

// ancestorChain returns the category and its ancestors, leaf first. The
// walk fails if it revisits a node or exceeds maxDepth.
func (s *Store) ancestorChain(ctx context.Context, id int) ([]model.Category, error) {
	var chain []model.Category
	seen := make(map[int]bool)

	current := &id
	for hops := 0; current != nil; hops++ {
		if hops >= maxDepth {
			return nil, fmt.Errorf("%w: hierarchy deeper than %d levels", common.ErrCycle, maxDepth)
		}
		if seen[*current] {
			return nil, fmt.Errorf("%w: category %d revisited", common.ErrCycle, *current)
		}
		seen[*current] = true

		cat, err := s.storage.GetCategoryByID(ctx, *current)
		if err != nil {
			return nil, err
		}
		chain = append(chain, *cat)
		current = cat.ParentID
	}

	return chain, nil
}

// subtreeIDs returns the category's ID plus all descendant IDs.
func (s *Store) subtreeIDs(ctx context.Context, id int) ([]int, error) {
	ids := []int{id}
	for cursor := 0; cursor < len(ids); cursor++ {
		if len(ids) > maxDepth*maxDepth {
			return nil, fmt.Errorf("%w: subtree walk did not terminate", common.ErrCycle)
		}
		children, err := s.storage.GetChildCategories(ctx, &ids[cursor])
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			ids = append(ids, child.ID)
		}
	}
	return ids, nil
}

// checkSiblingName rejects a case-insensitive name collision among the
// active categories sharing parentID. selfID exempts the category being
// moved or renamed.
func (s *Store) checkSiblingName(ctx context.Context, name string, parentID *int, selfID int) error {
	siblings, err := s.storage.GetChildCategories(ctx, parentID)
	if err != nil {
		return err
	}
	for _, sibling := range siblings {
		if sibling.ID != selfID && strings.EqualFold(sibling.Name, name) {
			return fmt.Errorf("%w: %q", common.ErrDuplicateName, name)
		}
	}
	return nil
}
