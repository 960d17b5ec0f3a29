package access

import (
	"context"
	"errors"
	"sync"
	"testing"

	"showcase/internal/common"
	"showcase/internal/common/security"
	"showcase/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu       sync.Mutex
	projects map[string]*model.Project
	members  map[string]map[string]bool
	lookups  int
	err      error
}

func newMemStore() *memStore {
	return &memStore{projects: map[string]*model.Project{}, members: map[string]map[string]bool{}}
}

func (m *memStore) FindByID(_ context.Context, id string) (*model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	p, ok := m.projects[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) IsCollaborator(_ context.Context, projectID, creatorID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	return m.members[projectID][creatorID], nil
}

func (m *memStore) add(projectID, creatorID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.members[projectID] == nil {
		m.members[projectID] = map[string]bool{}
	}
	m.members[projectID][creatorID] = true
}

func (m *memStore) remove(projectID, creatorID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.members[projectID], creatorID)
}

var (
	ownerA   = security.Creator{ID: "creator-a"}
	collabB  = security.Creator{ID: "creator-b"}
	outsider = security.Creator{ID: "creator-c"}
	admin    = security.Admin{ID: "admin-1", Email: "root@example.com", Role: security.RoleAdmin}
)

func setup() (*Engine, *memStore) {
	store := newMemStore()
	store.projects["p1"] = &model.Project{ID: "p1", CreatorID: ownerA.ID, Title: "Orbit"}
	return NewEngine(store, store), store
}

func TestTierAllows(t *testing.T) {
	ownerOnly := []Capability{CapDelete, CapManageCollaborators, CapAcceptTerms, CapTransferOwnership}

	for _, c := range ownerOnly {
		assert.True(t, TierOwner.Allows(c), c)
		assert.False(t, TierCollaborator.Allows(c), c)
		assert.False(t, TierNone.Allows(c), c)
	}
	for _, c := range []Capability{CapView, CapEdit} {
		assert.True(t, TierOwner.Allows(c), c)
		assert.True(t, TierCollaborator.Allows(c), c)
		assert.False(t, TierNone.Allows(c), c)
	}
	assert.False(t, TierOwner.Allows(Capability("launch_rockets")))
}

func TestCanEdit_OwnerOrCollaboratorOnly(t *testing.T) {
	engine, store := setup()
	store.add("p1", collabB.ID)
	ctx := context.Background()

	tests := []struct {
		name string
		p    security.Principal
		want bool
	}{
		{"primary owner", ownerA, true},
		{"collaborator", collabB, true},
		{"unrelated creator", outsider, false},
		{"admin principal", admin, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := engine.CanEdit(ctx, tt.p, "p1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestOwnerKeepsAccessWithoutCollaboratorRow(t *testing.T) {
	engine, store := setup()
	store.remove("p1", ownerA.ID)

	for c := range minTier {
		ok, err := engine.CanAccess(context.Background(), ownerA, "p1", c)
		require.NoError(t, err)
		assert.True(t, ok, c)
	}
	isOwner, err := engine.IsPrimaryOwner(context.Background(), ownerA, "p1")
	require.NoError(t, err)
	assert.True(t, isOwner)
}

func TestCollaboratorLifecycle(t *testing.T) {
	engine, store := setup()
	ctx := context.Background()
	store.add("p1", collabB.ID)

	p, err := engine.Authorize(ctx, collabB, "p1", CapEdit)
	require.NoError(t, err)
	assert.Equal(t, "Orbit", p.Title)

	_, err = engine.Authorize(ctx, collabB, "p1", CapDelete)
	require.ErrorIs(t, err, common.ErrForbidden)

	isOwner, err := engine.IsPrimaryOwner(ctx, collabB, "p1")
	require.NoError(t, err)
	assert.False(t, isOwner)

	store.remove("p1", collabB.ID)

	_, err = engine.Authorize(ctx, collabB, "p1", CapEdit)
	require.ErrorIs(t, err, common.ErrForbidden)
	assert.NotErrorIs(t, err, common.ErrNotFound)
}

func TestAuthorize_MissingProjectIsNotFound(t *testing.T) {
	engine, _ := setup()

	for _, p := range []security.Principal{ownerA, outsider, admin} {
		_, err := engine.Authorize(context.Background(), p, "nope", CapView)
		require.ErrorIs(t, err, common.ErrNotFound)
		assert.NotErrorIs(t, err, common.ErrForbidden)
	}

	ok, err := engine.CanAccess(context.Background(), ownerA, "nope", CapView)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTier(t *testing.T) {
	engine, store := setup()
	store.add("p1", collabB.ID)
	ctx := context.Background()

	tier, err := engine.Tier(ctx, ownerA, "p1")
	require.NoError(t, err)
	assert.Equal(t, TierOwner, tier)

	tier, err = engine.Tier(ctx, collabB, "p1")
	require.NoError(t, err)
	assert.Equal(t, TierCollaborator, tier)

	tier, err = engine.Tier(ctx, outsider, "p1")
	require.NoError(t, err)
	assert.Equal(t, TierNone, tier)
}

func TestEveryCallHitsStorage(t *testing.T) {
	engine, store := setup()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := engine.CanEdit(ctx, ownerA, "p1")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, store.lookups)
}

func TestMembershipLookupFailureSurfaces(t *testing.T) {
	engine, store := setup()
	store.err = errors.New("connection reset")

	ok, err := engine.CanEdit(context.Background(), outsider, "p1")
	require.Error(t, err)
	assert.False(t, ok)
	assert.NotErrorIs(t, err, common.ErrForbidden)
	assert.Equal(t, 500, common.HTTPStatusFromError(err))
}
