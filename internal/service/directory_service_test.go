package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub/internal/auth"
	apperrors "schoolhub/internal/errors"
	"schoolhub/internal/model"
	"schoolhub/internal/repository"
)

type directoryFixture struct {
	identity  *identityService
	directory DirectoryService
	store     *memStore
	cache     *memCache
	ids       map[string]uuid.UUID
}

func newDirectoryFixture(t *testing.T) *directoryFixture {
	t.Helper()
	identity, store, cache, _ := newTestIdentity(t)
	fx := &directoryFixture{
		identity:  identity,
		directory: NewDirectoryService(store, cache, CacheTTL{Stats: time.Minute, Account: time.Minute}),
		store:     store,
		cache:     cache,
		ids:       map[string]uuid.UUID{},
	}

	people := []struct{ first, last, email, role, spec string }{
		{"Ann", "Lee", "ann@x.com", "teacher", "Math"},
		{"Annika", "Berg", "annika@x.com", "student", ""},
		{"Joann", "Fox", "joann@x.com", "student", ""},
		{"Hannah", "Ray", "hannah@x.com", "teacher", "Physics"},
		{"Ann", "Admin", "root@x.com", "admin", ""},
		{"Bob", "Stone", "bob@x.com", "teacher", "Math"},
	}
	for _, p := range people {
		f := person(p.first, p.last, p.email, p.role)
		if p.spec != "" {
			f.Specialization = ptr(p.spec)
		}
		res, err := identity.Register(context.Background(), f)
		require.NoError(t, err)
		fx.ids[p.email] = res.User.ID
	}
	return fx
}

func (fx *directoryFixture) principal(email string) auth.Principal {
	a := fx.store.accounts[fx.ids[email]]
	return auth.Principal{AccountID: a.ID, FirstName: a.FirstName, LastName: a.LastName, Email: a.Email, Role: a.Role}
}

func emails(accounts []model.Account) []string {
	out := make([]string, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Email)
	}
	return out
}

func TestDirectoryService_SearchPeers(t *testing.T) {
	fx := newDirectoryFixture(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		caller      string
		query       string
		excludeSelf bool
		want        []string
	}{
		{"student sees only teachers", "annika@x.com", "ann", true, []string{"ann@x.com", "hannah@x.com"}},
		{"teacher sees only students", "ann@x.com", "ann", true, []string{"annika@x.com", "joann@x.com"}},
		{"admin sees both", "root@x.com", "ann", true, []string{"ann@x.com", "annika@x.com", "joann@x.com", "hannah@x.com"}},
		{"full name match", "annika@x.com", "ann lee", true, []string{"ann@x.com"}},
		{"case insensitive", "joann@x.com", "STONE", true, []string{"bob@x.com"}},
		{"own role is never a peer", "ann@x.com", "lee", false, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fx.directory.SearchPeers(ctx, fx.principal(tt.caller), tt.query, tt.excludeSelf)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, emails(got))
			for _, a := range got {
				assert.NotEqual(t, fx.principal(tt.caller).Role, a.Role)
			}
		})
	}

	t.Run("admins are never peers", func(t *testing.T) {
		got, err := fx.directory.SearchPeers(ctx, fx.principal("root@x.com"), "admin", true)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("query is required", func(t *testing.T) {
		_, err := fx.directory.SearchPeers(ctx, fx.principal("ann@x.com"), "   ", true)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})
}

func TestDirectoryService_ListAccounts(t *testing.T) {
	fx := newDirectoryFixture(t)
	ctx := context.Background()

	page, err := fx.directory.ListAccounts(ctx, "teacher", repository.Page{Number: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.Pages())
	assert.Equal(t, "bob@x.com", page.Items[0].Email, "newest first")

	all, err := fx.directory.ListAccounts(ctx, "", repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(6), all.Total)
	assert.Equal(t, 10, all.Limit)

	_, err = fx.directory.ListAccounts(ctx, "janitor", repository.Page{})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestDirectoryService_GetAccountIsCached(t *testing.T) {
	fx := newDirectoryFixture(t)
	ctx := context.Background()
	id := fx.ids["hannah@x.com"]

	view, err := fx.directory.GetAccount(ctx, id)
	require.NoError(t, err)
	require.IsType(t, &model.TeacherProfile{}, view.Profile)
	assert.Contains(t, fx.cache.entries, accountKey(id))

	// A stale read is served from the cache until a write through the
	// orchestrator invalidates it.
	acc := fx.store.accounts[id]
	acc.FirstName = "Changed"
	fx.store.accounts[id] = acc

	cached, err := fx.directory.GetAccount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Hannah", cached.User.FirstName)
	assert.Equal(t, "Physics", cached.Profile.(*model.TeacherProfile).Specialization)

	_, err = fx.identity.AdminUpdate(ctx, id, Fields{LastName: ptr("Ray-Smith")})
	require.NoError(t, err)

	fresh, err := fx.directory.GetAccount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Changed", fresh.User.FirstName)
	assert.Equal(t, "Ray-Smith", fresh.User.LastName)

	_, err = fx.directory.GetAccount(ctx, uuid.New())
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestDirectoryService_StudentsAndTeachers(t *testing.T) {
	fx := newDirectoryFixture(t)
	ctx := context.Background()

	students, err := fx.directory.ListStudents(ctx, repository.StudentFilter{Search: "joann"})
	require.NoError(t, err)
	require.Len(t, students.Items, 1)
	assert.Equal(t, "joann@x.com", students.Items[0].Account.Email)

	_, err = fx.directory.ListStudents(ctx, repository.StudentFilter{Status: "on-leave"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	teachers, err := fx.directory.ListTeachers(ctx, repository.TeacherFilter{Specialization: "math"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), teachers.Total)

	s, err := fx.directory.GetStudent(ctx, fx.ids["annika@x.com"])
	require.NoError(t, err)
	assert.Equal(t, "Not Assigned", s.Class)

	_, err = fx.directory.GetStudent(ctx, fx.ids["ann@x.com"])
	assert.Equal(t, "Student not found", apperrors.MapErrorToHTTP(err).Message)

	_, err = fx.directory.GetTeacher(ctx, fx.ids["annika@x.com"])
	assert.Equal(t, "Teacher not found", apperrors.MapErrorToHTTP(err).Message)
}

func TestDirectoryService_TeacherStats(t *testing.T) {
	fx := newDirectoryFixture(t)
	ctx := context.Background()

	_, err := fx.identity.AdminUpdate(ctx, fx.ids["bob@x.com"], Fields{Status: ptr("on-leave")})
	require.NoError(t, err)

	stats, err := fx.directory.TeacherStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.Active)
	assert.Equal(t, int64(1), stats.OnLeave)
	assert.Equal(t, []repository.SpecializationCount{
		{Specialization: "Math", Count: 2},
		{Specialization: "Physics", Count: 1},
	}, stats.BySpecialization)
	assert.Contains(t, fx.cache.entries, teacherStatsKey)
}
