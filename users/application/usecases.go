package application

import (
	"context"

	"repokit/domain/repository"
	"repokit/errors"
	"repokit/logging"
	"repokit/users/domain"
)

// SignupInput 注册输入
type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup 注册用户
type Signup struct {
	repo   domain.IUserRepository
	hasher HashProvider
	logger logging.Logger
}

func NewSignup(repo domain.IUserRepository, hasher HashProvider) *Signup {
	return &Signup{repo: repo, hasher: hasher, logger: logging.ComponentLogger("users.signup")}
}

// Execute 校验输入、检查邮箱占用、哈希密码后写入
func (uc *Signup) Execute(ctx context.Context, in SignupInput) (UserOutput, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return UserOutput{}, errors.NewError(errors.ErrCodeInvalidInput, "Input data not provided")
	}

	if err := uc.repo.EmailExists(ctx, in.Email); err != nil {
		return UserOutput{}, errors.Normalize(err)
	}

	hashed, err := uc.hasher.GenerateHash(in.Password)
	if err != nil {
		return UserOutput{}, err
	}

	user, err := domain.NewUser(domain.UserProps{Name: in.Name, Email: in.Email, Password: hashed})
	if err != nil {
		return UserOutput{}, err
	}

	if err := uc.repo.Insert(ctx, user); err != nil {
		return UserOutput{}, errors.Normalize(err)
	}

	uc.logger.Info(ctx, "用户已注册", logging.String("user_id", user.GetID()))
	return ToUserOutput(user), nil
}

// GetUser 按 ID 查询
type GetUser struct {
	repo domain.IUserRepository
}

func NewGetUser(repo domain.IUserRepository) *GetUser {
	return &GetUser{repo: repo}
}

func (uc *GetUser) Execute(ctx context.Context, id string) (UserOutput, error) {
	user, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return UserOutput{}, errors.Normalize(err)
	}
	return ToUserOutput(user), nil
}

// ListUsers 分页检索
type ListUsers struct {
	repo    domain.IUserRepository
	perPage int
}

// NewListUsers perPage 为未指定每页条数时的默认值，非正数时沿用 SearchParams 的默认值
func NewListUsers(repo domain.IUserRepository, perPage int) *ListUsers {
	return &ListUsers{repo: repo, perPage: perPage}
}

func (uc *ListUsers) Execute(ctx context.Context, in repository.SearchInput) (PaginationOutput[UserOutput], error) {
	var opts []repository.ParamsOption
	if uc.perPage > 0 {
		opts = append(opts, repository.WithDefaultPerPage(uc.perPage))
	}

	res, err := uc.repo.Search(ctx, repository.NewSearchParams(in, opts...))
	if err != nil {
		return PaginationOutput[UserOutput]{}, errors.Normalize(err)
	}
	return ToPaginationOutput(res, ToUserOutput), nil
}

// UpdateUserInput 修改名称输入
type UpdateUserInput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UpdateUser 修改名称
type UpdateUser struct {
	repo domain.IUserRepository
}

func NewUpdateUser(repo domain.IUserRepository) *UpdateUser {
	return &UpdateUser{repo: repo}
}

func (uc *UpdateUser) Execute(ctx context.Context, in UpdateUserInput) (UserOutput, error) {
	if in.Name == "" {
		return UserOutput{}, errors.NewError(errors.ErrCodeInvalidInput, "Name not provided")
	}

	user, err := uc.repo.FindByID(ctx, in.ID)
	if err != nil {
		return UserOutput{}, errors.Normalize(err)
	}
	if err := user.Update(in.Name); err != nil {
		return UserOutput{}, err
	}
	if err := uc.repo.Update(ctx, user); err != nil {
		return UserOutput{}, errors.Normalize(err)
	}
	return ToUserOutput(user), nil
}

// UpdatePasswordInput 修改密码输入
type UpdatePasswordInput struct {
	ID          string `json:"id"`
	OldPassword string `json:"oldPassword"`
	Password    string `json:"password"`
}

// UpdatePassword 修改密码
type UpdatePassword struct {
	repo   domain.IUserRepository
	hasher HashProvider
}

func NewUpdatePassword(repo domain.IUserRepository, hasher HashProvider) *UpdatePassword {
	return &UpdatePassword{repo: repo, hasher: hasher}
}

// Execute 先查找用户，再校验新旧密码
func (uc *UpdatePassword) Execute(ctx context.Context, in UpdatePasswordInput) (UserOutput, error) {
	user, err := uc.repo.FindByID(ctx, in.ID)
	if err != nil {
		return UserOutput{}, errors.Normalize(err)
	}

	if in.OldPassword == "" || in.Password == "" {
		return UserOutput{}, errors.NewError(errors.ErrCodeInvalidInput, "OldPassword and new password is required")
	}

	ok, err := uc.hasher.CompareHash(in.OldPassword, user.Password())
	if err != nil {
		return UserOutput{}, err
	}
	if !ok {
		return UserOutput{}, errors.NewError(errors.ErrCodeInvalidInput, "OldPassword does not match")
	}

	hashed, err := uc.hasher.GenerateHash(in.Password)
	if err != nil {
		return UserOutput{}, err
	}
	if err := user.UpdatePassword(hashed); err != nil {
		return UserOutput{}, err
	}
	if err := uc.repo.Update(ctx, user); err != nil {
		return UserOutput{}, errors.Normalize(err)
	}
	return ToUserOutput(user), nil
}

// DeleteUser 删除用户
type DeleteUser struct {
	repo   domain.IUserRepository
	logger logging.Logger
}

func NewDeleteUser(repo domain.IUserRepository) *DeleteUser {
	return &DeleteUser{repo: repo, logger: logging.ComponentLogger("users.delete")}
}

func (uc *DeleteUser) Execute(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return errors.Normalize(err)
	}
	uc.logger.Info(ctx, "用户已删除", logging.String("user_id", id))
	return nil
}

// UseCases 汇总全部用户用例
type UseCases struct {
	Signup         *Signup
	GetUser        *GetUser
	ListUsers      *ListUsers
	UpdateUser     *UpdateUser
	UpdatePassword *UpdatePassword
	DeleteUser     *DeleteUser
}

// New 以同一仓储与哈希器装配全部用例
func New(repo domain.IUserRepository, hasher HashProvider, perPage int) *UseCases {
	return &UseCases{
		Signup:         NewSignup(repo, hasher),
		GetUser:        NewGetUser(repo),
		ListUsers:      NewListUsers(repo, perPage),
		UpdateUser:     NewUpdateUser(repo),
		UpdatePassword: NewUpdatePassword(repo, hasher),
		DeleteUser:     NewDeleteUser(repo),
	}
}
