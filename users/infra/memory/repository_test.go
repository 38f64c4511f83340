package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repokit/domain/repository"
	"repokit/users/domain"
)

func newUser(t *testing.T, name, email string, createdAt time.Time) *domain.UserEntity {
	t.Helper()
	u, err := domain.NewUser(domain.UserProps{Name: name, Email: email, Password: "TestPassword123", CreatedAt: createdAt})
	require.NoError(t, err)
	return u
}

func TestUserRepository_FindByEmail(t *testing.T) {
	repo := New()
	ctx := context.Background()

	_, err := repo.FindByEmail(ctx, "a@a.com")
	require.True(t, repository.IsNotFound(err))
	assert.Equal(t, "Entity not found by email a@a.com", err.Error())

	u := newUser(t, "a", "a@a.com", time.Time{})
	require.NoError(t, repo.Insert(ctx, u))

	got, err := repo.FindByEmail(ctx, "a@a.com")
	require.NoError(t, err)
	assert.Equal(t, u.GetID(), got.GetID())
}

func TestUserRepository_EmailExists(t *testing.T) {
	repo := New()
	ctx := context.Background()

	require.NoError(t, repo.EmailExists(ctx, "a@a.com"))
	require.NoError(t, repo.Insert(ctx, newUser(t, "a", "a@a.com", time.Time{})))

	err := repo.EmailExists(ctx, "a@a.com")
	require.True(t, repository.IsConflict(err))
	assert.Equal(t, "Email already exists a@a.com", err.Error())
}

func TestUserRepository_SearchDefaults(t *testing.T) {
	repo := New()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 16; i++ {
		u := newUser(t, "test", "t@t.com", base.Add(time.Duration(i)*time.Millisecond))
		ids = append(ids, u.GetID())
		require.NoError(t, repo.Insert(ctx, u))
	}

	res, err := repo.Search(ctx, repository.DefaultSearchParams())
	require.NoError(t, err)
	assert.Len(t, res.Items, 15)
	assert.Equal(t, 16, res.Total)
	assert.Equal(t, 2, res.LastPage)
	assert.Equal(t, ids[15], res.Items[0].GetID())
	assert.Equal(t, ids[1], res.Items[14].GetID())
	assert.Equal(t, []string{domain.SortByName, domain.SortByCreatedAt}, repo.SortableFields())
}

func TestUserRepository_SearchFilterAndSort(t *testing.T) {
	repo := New()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, n := range []string{"test", "a", "TEST", "b", "TeSt"} {
		require.NoError(t, repo.Insert(ctx, newUser(t, n, "t@t.com", base.Add(time.Duration(i)*time.Second))))
	}

	params := repository.NewSearchParams(repository.SearchInput{Page: 1, PerPage: 2, Sort: "name", SortDir: "asc", Filter: "TEST"})
	res, err := repo.Search(ctx, params)
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "TEST", res.Items[0].Name())
	assert.Equal(t, "TeSt", res.Items[1].Name())
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.LastPage)
	assert.Equal(t, "TEST", res.Filter)
}
