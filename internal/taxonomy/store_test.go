package taxonomy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebds/ledgertag/internal/common"
	"github.com/calebds/ledgertag/internal/model"
	"github.com/calebds/ledgertag/internal/service"
	"github.com/calebds/ledgertag/internal/testutil"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(testutil.NewStorage(t))
}

func mustCreate(t *testing.T, s *Store, name string, parentID *int) *model.Category {
	t.Helper()
	cat := &model.Category{Name: name, ParentID: parentID}
	require.NoError(t, s.Create(context.Background(), cat))
	return cat
}

func TestStore_Create_Validation(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	err := s.Create(ctx, &model.Category{Name: "   "})
	assert.ErrorIs(t, err, common.ErrValidation)

	err = s.Create(ctx, nil)
	assert.ErrorIs(t, err, common.ErrValidation)

	missing := 9999
	err = s.Create(ctx, &model.Category{Name: "Orphan", ParentID: &missing})
	assert.ErrorIs(t, err, common.ErrDanglingParent)
}

func TestStore_Create_DuplicateSiblingName(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	parent := mustCreate(t, s, "Shopping", nil)
	mustCreate(t, s, "Online", &parent.ID)

	// Same name under the same parent, case differs.
	err := s.Create(ctx, &model.Category{Name: "ONLINE", ParentID: &parent.ID})
	assert.ErrorIs(t, err, common.ErrDuplicateName)

	// Same name under a different parent is fine.
	other := mustCreate(t, s, "Travel", nil)
	err = s.Create(ctx, &model.Category{Name: "Online", ParentID: &other.ID})
	assert.NoError(t, err)
}

// flakyCategoryStorage fails category lookups for one ID to simulate a
// storage-layer failure distinct from a missing row.
type flakyCategoryStorage struct {
	service.Storage
	failID int
	err    error
}

func (f *flakyCategoryStorage) GetCategoryByID(ctx context.Context, id int) (*model.Category, error) {
	if id == f.failID {
		return nil, f.err
	}
	return f.Storage.GetCategoryByID(ctx, id)
}

func TestStore_ParentLookupFailurePropagates(t *testing.T) {
	ctx := context.Background()
	storage := testutil.NewStorage(t)

	seeded := NewStore(storage)
	a := mustCreate(t, seeded, "A", nil)
	b := mustCreate(t, seeded, "B", nil)

	errDisk := errors.New("disk read failed")
	s := NewStore(&flakyCategoryStorage{Storage: storage, failID: b.ID, err: errDisk})

	// A storage failure on the parent lookup is not a dangling parent.
	err := s.Create(ctx, &model.Category{Name: "C", ParentID: &b.ID})
	assert.ErrorIs(t, err, errDisk)
	assert.NotErrorIs(t, err, common.ErrDanglingParent)

	err = s.Reparent(ctx, a.ID, &b.ID)
	assert.ErrorIs(t, err, errDisk)
	assert.NotErrorIs(t, err, common.ErrDanglingParent)
}

func TestStore_HierarchyPath(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	food := mustCreate(t, s, "Food & Dining", nil)
	restaurants := mustCreate(t, s, "Restaurants", &food.ID)
	sushi := mustCreate(t, s, "Sushi", &restaurants.ID)

	path, err := s.HierarchyPath(ctx, sushi.ID)
	require.NoError(t, err)
	assert.Equal(t, "Food & Dining > Restaurants > Sushi", path)

	path, err = s.HierarchyPath(ctx, food.ID)
	require.NoError(t, err)
	assert.Equal(t, "Food & Dining", path)

	_, err = s.HierarchyPath(ctx, 4242)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestStore_Reparent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	a := mustCreate(t, s, "A", nil)
	b := mustCreate(t, s, "B", &a.ID)
	c := mustCreate(t, s, "C", &b.ID)

	// Moving A under its own descendant C would close a cycle.
	err := s.Reparent(ctx, a.ID, &c.ID)
	assert.ErrorIs(t, err, common.ErrCycle)

	// Self-parenting is the degenerate cycle.
	err = s.Reparent(ctx, b.ID, &b.ID)
	assert.ErrorIs(t, err, common.ErrCycle)

	// A legal move: C becomes a child of A directly.
	require.NoError(t, s.Reparent(ctx, c.ID, &a.ID))
	path, err := s.HierarchyPath(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "A > C", path)

	// And a move to root.
	require.NoError(t, s.Reparent(ctx, c.ID, nil))
	path, err = s.HierarchyPath(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "C", path)
}

func TestStore_SystemCategoryProtection(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.EnsureDefaults(ctx))

	income, err := s.storage.GetCategoryByName(ctx, "Income")
	require.NoError(t, err)
	require.True(t, income.IsSystem)

	err = s.Delete(ctx, income.ID)
	assert.ErrorIs(t, err, common.ErrSystemCategory)

	other, err := s.storage.GetCategoryByName(ctx, "Other")
	require.NoError(t, err)
	err = s.Reparent(ctx, income.ID, &other.ID)
	assert.ErrorIs(t, err, common.ErrSystemCategory)
}

func TestStore_Delete_CascadesToSubtreeAndRules(t *testing.T) {
	ctx := context.Background()
	storage := testutil.NewStorage(t)
	s := NewStore(storage)

	parent := &model.Category{Name: "Hobbies"}
	require.NoError(t, s.Create(ctx, parent))
	child := &model.Category{Name: "Climbing", ParentID: &parent.ID}
	require.NoError(t, s.Create(ctx, child))

	rule := &model.CategoryRule{
		RuleName:         "gym",
		CategoryID:       child.ID,
		MerchantContains: "BOULDERING",
		Confidence:       0.9,
		Priority:         model.PriorityDefault,
		IsActive:         true,
	}
	require.NoError(t, storage.CreateRule(ctx, rule))

	require.NoError(t, s.Delete(ctx, parent.ID))

	// Both categories are soft-deleted.
	got, err := storage.GetCategoryByID(ctx, parent.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	got, err = storage.GetCategoryByID(ctx, child.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	// The rule pointing at the subtree was deactivated, not orphaned.
	rules, err := storage.GetActiveRules(ctx)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestStore_EnsureDefaults_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.EnsureDefaults(ctx))
	first, err := s.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, first, len(SystemCategories()))

	require.NoError(t, s.EnsureDefaults(ctx))
	second, err := s.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, second, len(first))
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	storage := testutil.NewStorage(t)
	s := NewStore(storage)
	require.NoError(t, s.EnsureDefaults(ctx))

	custom := &model.Category{Name: "Crypto"}
	require.NoError(t, s.Create(ctx, custom))

	rule := &model.CategoryRule{
		RuleName:         "exchange",
		CategoryID:       custom.ID,
		MerchantContains: "COINBASE",
		Confidence:       0.9,
		Priority:         model.PriorityDefault,
		IsActive:         true,
	}
	require.NoError(t, storage.CreateRule(ctx, rule))

	require.NoError(t, s.Reset(ctx))

	cats, err := s.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(SystemCategories()))
	for _, cat := range cats {
		assert.True(t, cat.IsSystem, "only system categories survive a reset: %s", cat.Name)
	}

	rules, err := storage.GetActiveRules(ctx)
	require.NoError(t, err)
	assert.Empty(t, rules, "rules on removed categories must not survive")
}

// Every reachable category terminates at a root; the ancestor walk never
// revisits a node.
func TestStore_Acyclic(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.EnsureDefaults(ctx))

	food, err := s.storage.GetCategoryByName(ctx, "Food & Dining")
	require.NoError(t, err)
	mustCreate(t, s, "Coffee", &food.ID)

	cats, err := s.Categories(ctx)
	require.NoError(t, err)
	for _, cat := range cats {
		_, err := s.HierarchyPath(ctx, cat.ID)
		assert.NoError(t, err, "category %q must resolve to a root", cat.Name)
	}
}
