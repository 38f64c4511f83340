package application

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"repokit/domain/repository"
	"repokit/errors"
	"repokit/users/domain"
	"repokit/users/infra/hashing"
	"repokit/users/infra/memory"
)

// fakeHasher 以前缀代替真实哈希
type fakeHasher struct{}

func (fakeHasher) GenerateHash(payload string) (string, error) { return "hashed:" + payload, nil }

func (fakeHasher) CompareHash(payload, hash string) (bool, error) {
	return hash == "hashed:"+payload, nil
}

func setup(t *testing.T) (*UseCases, *memory.UserRepository) {
	t.Helper()
	repo := memory.New()
	return New(repo, fakeHasher{}, 0), repo
}

func signup(t *testing.T, uc *UseCases, name, email string) UserOutput {
	t.Helper()
	out, err := uc.Signup.Execute(context.Background(), SignupInput{Name: name, Email: email, Password: "TestPassword123"})
	require.NoError(t, err)
	return out
}

func TestSignup(t *testing.T) {
	ctx := context.Background()

	t.Run("注册成功", func(t *testing.T) {
		uc, repo := setup(t)
		out := signup(t, uc, "test name", "a@a.com")

		assert.NotEmpty(t, out.ID)
		assert.Equal(t, "test name", out.Name)
		assert.Equal(t, "hashed:TestPassword123", out.Password)
		assert.False(t, out.CreatedAt.IsZero())

		stored, err := repo.FindByID(ctx, out.ID)
		require.NoError(t, err)
		assert.Equal(t, "a@a.com", stored.Email())
	})

	t.Run("缺少字段", func(t *testing.T) {
		uc, _ := setup(t)
		inputs := []SignupInput{
			{Email: "a@a.com", Password: "x"},
			{Name: "n", Password: "x"},
			{Name: "n", Email: "a@a.com"},
		}
		for _, in := range inputs {
			_, err := uc.Signup.Execute(ctx, in)
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetErrorCode(err))
			assert.Contains(t, err.Error(), "Input data not provided")
		}
	})

	t.Run("邮箱已存在", func(t *testing.T) {
		uc, _ := setup(t)
		signup(t, uc, "a", "a@a.com")

		_, err := uc.Signup.Execute(ctx, SignupInput{Name: "b", Email: "a@a.com", Password: "x"})
		require.Error(t, err)
		assert.True(t, errors.IsConflict(err))
		assert.True(t, repository.IsConflict(err))
	})

	t.Run("邮箱格式非法", func(t *testing.T) {
		uc, _ := setup(t)
		_, err := uc.Signup.Execute(ctx, SignupInput{Name: "a", Email: "invalid", Password: "x"})
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
	})

	t.Run("使用 bcrypt", func(t *testing.T) {
		repo := memory.New()
		hasher := hashing.NewBcrypt(bcrypt.MinCost)
		uc := New(repo, hasher, 0)

		out, err := uc.Signup.Execute(ctx, SignupInput{Name: "a", Email: "a@a.com", Password: "secret"})
		require.NoError(t, err)
		assert.NotEqual(t, "secret", out.Password)

		ok, err := hasher.CompareHash("secret", out.Password)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestGetUser(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()
	created := signup(t, uc, "a", "a@a.com")

	got, err := uc.GetUser.Execute(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = uc.GetUser.Execute(ctx, "fakeId")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Contains(t, err.Error(), "entity not found")
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("默认按创建时间倒序", func(t *testing.T) {
		repo := memory.New()
		uc := New(repo, fakeHasher{}, 0)
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 16; i++ {
			u, err := domain.NewUser(domain.UserProps{
				Name:      fmt.Sprintf("user%d", i),
				Email:     fmt.Sprintf("u%d@a.com", i),
				Password:  "x",
				CreatedAt: base.Add(time.Duration(i) * time.Second),
			})
			require.NoError(t, err)
			require.NoError(t, repo.Insert(ctx, u))
		}

		out, err := uc.ListUsers.Execute(ctx, repository.SearchInput{})
		require.NoError(t, err)
		assert.Equal(t, 16, out.Total)
		assert.Equal(t, 1, out.CurrentPage)
		assert.Equal(t, 2, out.LastPage)
		assert.Equal(t, 15, out.PerPage)
		require.Len(t, out.Items, 15)
		assert.Equal(t, "user15", out.Items[0].Name)
		assert.Equal(t, "user1", out.Items[14].Name)
	})

	t.Run("过滤与排序", func(t *testing.T) {
		uc, _ := setup(t)
		for _, name := range []string{"b", "a", "d", "e", "c"} {
			signup(t, uc, name, name+"@a.com")
		}

		out, err := uc.ListUsers.Execute(ctx, repository.SearchInput{Page: 1, PerPage: 2, Sort: "name", SortDir: "asc"})
		require.NoError(t, err)
		assert.Equal(t, 5, out.Total)
		assert.Equal(t, 3, out.LastPage)
		require.Len(t, out.Items, 2)
		assert.Equal(t, "a", out.Items[0].Name)
		assert.Equal(t, "b", out.Items[1].Name)

		out, err = uc.ListUsers.Execute(ctx, repository.SearchInput{Filter: "E"})
		require.NoError(t, err)
		require.Len(t, out.Items, 1)
		assert.Equal(t, "e", out.Items[0].Name)
	})

	t.Run("自定义每页默认值", func(t *testing.T) {
		repo := memory.New()
		uc := New(repo, fakeHasher{}, 3)
		for _, name := range []string{"a", "b", "c", "d"} {
			signup(t, uc, name, name+"@a.com")
		}

		out, err := uc.ListUsers.Execute(ctx, repository.SearchInput{})
		require.NoError(t, err)
		assert.Equal(t, 3, out.PerPage)
		assert.Len(t, out.Items, 3)
		assert.Equal(t, 2, out.LastPage)
	})
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	uc, repo := setup(t)
	created := signup(t, uc, "a", "a@a.com")

	t.Run("缺少名称", func(t *testing.T) {
		_, err := uc.UpdateUser.Execute(ctx, UpdateUserInput{ID: created.ID})
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetErrorCode(err))
		assert.Contains(t, err.Error(), "Name not provided")
	})

	t.Run("用户不存在", func(t *testing.T) {
		_, err := uc.UpdateUser.Execute(ctx, UpdateUserInput{ID: "fakeId", Name: "x"})
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("名称过长", func(t *testing.T) {
		_, err := uc.UpdateUser.Execute(ctx, UpdateUserInput{ID: created.ID, Name: strings.Repeat("a", 101)})
		assert.True(t, errors.IsValidation(err))
	})

	t.Run("修改成功", func(t *testing.T) {
		out, err := uc.UpdateUser.Execute(ctx, UpdateUserInput{ID: created.ID, Name: "new name"})
		require.NoError(t, err)
		assert.Equal(t, "new name", out.Name)

		stored, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "new name", stored.Name())
	})
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()
	uc, _ := setup(t)
	created := signup(t, uc, "a", "a@a.com")

	t.Run("用户不存在优先于参数校验", func(t *testing.T) {
		_, err := uc.UpdatePassword.Execute(ctx, UpdatePasswordInput{ID: "fakeId"})
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("缺少密码", func(t *testing.T) {
		for _, in := range []UpdatePasswordInput{
			{ID: created.ID, Password: "new"},
			{ID: created.ID, OldPassword: "TestPassword123"},
		} {
			_, err := uc.UpdatePassword.Execute(ctx, in)
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetErrorCode(err))
			assert.Contains(t, err.Error(), "OldPassword and new password is required")
		}
	})

	t.Run("旧密码不匹配", func(t *testing.T) {
		_, err := uc.UpdatePassword.Execute(ctx, UpdatePasswordInput{ID: created.ID, OldPassword: "wrong", Password: "new"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OldPassword does not match")
	})

	t.Run("修改成功", func(t *testing.T) {
		out, err := uc.UpdatePassword.Execute(ctx, UpdatePasswordInput{ID: created.ID, OldPassword: "TestPassword123", Password: "new"})
		require.NoError(t, err)
		assert.Equal(t, "hashed:new", out.Password)

		got, err := uc.GetUser.Execute(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "hashed:new", got.Password)
	})
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	uc, _ := setup(t)
	created := signup(t, uc, "a", "a@a.com")

	require.NoError(t, uc.DeleteUser.Execute(ctx, created.ID))

	_, err := uc.GetUser.Execute(ctx, created.ID)
	assert.True(t, errors.IsNotFound(err))

	err = uc.DeleteUser.Execute(ctx, created.ID)
	assert.True(t, errors.IsNotFound(err))
}
