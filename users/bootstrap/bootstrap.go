// Package bootstrap 按配置装配用户仓储与用例
//
// 装饰顺序（由外到内）：traced → notify → cached → 具体后端。
// FindByEmail / EmailExists 直接落到具体后端，不经过缓存与事件发布。
package bootstrap

import (
	"context"
	stdErrors "errors"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"repokit/config"
	core "repokit/data/db"
	"repokit/data/db/basic"
	"repokit/domain/repository"
	"repokit/errors"
	"repokit/logging"
	"repokit/retry"
	"repokit/storage/cached"
	"repokit/storage/notify"
	"repokit/storage/redisstore"
	"repokit/storage/traced"
	"repokit/users/application"
	"repokit/users/domain"
	"repokit/users/infra/hashing"
	usermemory "repokit/users/infra/memory"
	"repokit/users/infra/redisrepo"
	"repokit/users/infra/sqlrepo"
)

// Option 装配选项
type Option func(*options)

type options struct {
	hasher         application.HashProvider
	tracerProvider trace.TracerProvider
	publisher      notify.Publisher
	logger         logging.Logger
}

// WithHasher 替换默认的 bcrypt 哈希器
func WithHasher(h application.HashProvider) Option {
	return func(o *options) { o.hasher = h }
}

// WithTracerProvider 未设置时使用全局 TracerProvider
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithPublisher 指定变更事件发布者，优先于配置中的 nats.url
func WithPublisher(p notify.Publisher) Option {
	return func(o *options) { o.publisher = p }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Stack 装配结果
type Stack struct {
	Config   *config.Config
	Repo     domain.IUserRepository
	UseCases *application.UseCases

	closers []func() error
	logger  logging.Logger
}

// Open 按配置打开后端并装配装饰器与用例，失败时释放已打开的资源
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (_ *Stack, err error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.ComponentLogger("users.bootstrap")
	}
	if o.hasher == nil {
		o.hasher = hashing.NewBcrypt(bcrypt.DefaultCost)
	}

	s := &Stack{Config: cfg, logger: o.logger}
	defer func() {
		if err != nil {
			_ = s.Close()
		}
	}()

	base, err := s.openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var repo repository.ISearchableRepository[*domain.UserEntity] = base

	if cfg.Cache.Size > 0 {
		repo = cached.New(repo, cached.Config{Name: "users", MaxSize: cfg.Cache.Size, TTL: cfg.Cache.TTL})
	}

	publisher := o.publisher
	if publisher == nil && cfg.NATS.URL != "" {
		pub, err := notify.NewNATSPublisher(notify.NATSConfig{URL: cfg.NATS.URL, Subject: cfg.NATS.Subject})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, pub.Close)
		publisher = pub
	}
	if publisher != nil {
		repo = notify.New(repo, publisher,
			notify.WithProjection(PublicView),
			notify.WithRetry[*domain.UserEntity](retry.DefaultConfig()),
		)
	}

	var tracedOpts []traced.Option[*domain.UserEntity]
	if o.tracerProvider != nil {
		tracedOpts = append(tracedOpts, traced.WithTracerProvider[*domain.UserEntity](o.tracerProvider))
	}
	repo = traced.New(repo, "users", tracedOpts...)

	s.Repo = &userRepository{ISearchableRepository: repo, base: base}
	s.UseCases = application.New(s.Repo, o.hasher, cfg.PerPage)

	o.logger.Info(ctx, "用户仓储已就绪", logging.String("config", cfg.String()))
	return s, nil
}

func (s *Stack) openBackend(ctx context.Context, cfg *config.Config) (domain.IUserRepository, error) {
	switch {
	case cfg.Backend == config.BackendMemory:
		return usermemory.New(), nil

	case cfg.IsSQL():
		dbCfg := core.DBConfig{Driver: cfg.SQLDriver(), DSN: cfg.DSN}
		if cfg.Backend == config.BackendSQLite {
			dbCfg.MaxOpenConns = 1
		}
		db, err := basic.New(dbCfg)
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrCodeDatabase, "打开数据库失败")
		}
		s.closers = append(s.closers, db.Close)

		repo, err := sqlrepo.New(db)
		if err != nil {
			return nil, err
		}
		if err := repo.Migrate(ctx); err != nil {
			return nil, err
		}
		return repo, nil

	case cfg.Backend == config.BackendRedis:
		repo, err := redisrepo.New(redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, repo.Close)
		if err := repo.Ping(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	}
	return nil, errors.Errorf(errors.ErrCodeInvalidInput, "unknown backend %q", cfg.Backend)
}

// Close 按打开的逆序释放资源
func (s *Stack) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return stdErrors.Join(errs...)
}

// PublicView 变更事件中的用户快照，不含密码
func PublicView(u *domain.UserEntity) map[string]any {
	return map[string]any{
		"name":      u.Name(),
		"email":     u.Email(),
		"createdAt": u.CreatedAt(),
	}
}

// userRepository 装饰后的检索仓储加上具体后端的邮箱查询
type userRepository struct {
	repository.ISearchableRepository[*domain.UserEntity]
	base domain.IUserRepository
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.UserEntity, error) {
	return r.base.FindByEmail(ctx, email)
}

func (r *userRepository) EmailExists(ctx context.Context, email string) error {
	return r.base.EmailExists(ctx, email)
}

var _ domain.IUserRepository = (*userRepository)(nil)
