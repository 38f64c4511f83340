// Package redisstore 提供基于 Redis 的可检索仓储实现
//
// 数据布局（prefix 由配置给出）：
//
//	<prefix>:items  HASH  canonical id -> 编码后的实体
//	<prefix>:order  ZSET  canonical id，score 为插入序号
//	<prefix>:seq    STRING 插入序号计数器
//
// 写操作通过 Lua 脚本保证原子性；Search 按插入顺序加载全部实体后
// 执行与内存后端相同的 Pipeline。
package redisstore

import (
	"context"
	stdErrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"repokit/domain/entity"
	"repokit/domain/repository"
	"repokit/errors"
	"repokit/logging"
)

// Config Redis 仓储配置
type Config struct {
	Client   redis.UniversalClient
	Addr     string
	Username string
	Password string
	DB       int

	// Prefix 键前缀，默认 "repokit"
	Prefix string
	Logger logging.Logger
}

// Repository Redis 可检索仓储
type Repository[E entity.IEntity] struct {
	client    redis.UniversalClient
	ownClient bool
	codec     Codec[E]
	pipeline  repository.Pipeline[E]
	logger    logging.Logger

	itemsKey string
	orderKey string
	seqKey   string
}

// New 创建 Redis 仓储
func New[E entity.IEntity](cfg Config, codec Codec[E], pipeline repository.Pipeline[E]) (*Repository[E], error) {
	if codec == nil {
		return nil, stdErrors.New("redisstore: codec is required")
	}
	if pipeline.Filter == nil {
		return nil, stdErrors.New("redisstore: pipeline filter is required")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "repokit"
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.ComponentLogger("repository.redis").WithFields(logging.String("prefix", cfg.Prefix))
	}

	cl := cfg.Client
	own := false
	if cl == nil {
		cl = redis.NewClient(&redis.Options{Addr: cfg.Addr, Username: cfg.Username, Password: cfg.Password, DB: cfg.DB})
		own = true
	}

	return &Repository[E]{
		client:    cl,
		ownClient: own,
		codec:     codec,
		pipeline:  pipeline,
		logger:    cfg.Logger,
		itemsKey:  cfg.Prefix + ":items",
		orderKey:  cfg.Prefix + ":order",
		seqKey:    cfg.Prefix + ":seq",
	}, nil
}

// Ping 检查连接
func (r *Repository[E]) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return errors.WrapError(err, errors.ErrCodeCache, "redis 不可用")
	}
	return nil
}

// Close 关闭由仓储自行创建的客户端
func (r *Repository[E]) Close() error {
	if r.ownClient {
		return r.client.Close()
	}
	return nil
}

// Insert 新增实体，ID 已存在时返回 ErrEntityConflict
func (r *Repository[E]) Insert(ctx context.Context, e E) error {
	return r.InsertAll(ctx, []E{e})
}

// InsertAll 原子批量新增，任一 ID 已存在时全部不写入
func (r *Repository[E]) InsertAll(ctx context.Context, entities []E) error {
	if len(entities) == 0 {
		return nil
	}
	args := make([]any, 0, len(entities)*2)
	for _, e := range entities {
		payload, err := r.codec.Encode(e)
		if err != nil {
			return errors.WrapError(err, errors.ErrCodeInternal, "编码实体失败")
		}
		args = append(args, e.GetID(), payload)
	}

	dup, err := insertScript.Run(ctx, r.client, []string{r.itemsKey, r.orderKey, r.seqKey}, args...).Text()
	if err != nil {
		return r.wrap(ctx, err, "insert")
	}
	if dup != "" {
		return &repository.RepositoryError{
			Code:     repository.CodeEntityConflict,
			Message:  "entity already exists",
			EntityID: dup,
		}
	}
	return nil
}

// Update 按 ID 替换实体
func (r *Repository[E]) Update(ctx context.Context, e E) error {
	payload, err := r.codec.Encode(e)
	if err != nil {
		return errors.WrapError(err, errors.ErrCodeInternal, "编码实体失败")
	}
	n, err := updateScript.Run(ctx, r.client, []string{r.itemsKey}, e.GetID(), payload).Int()
	if err != nil {
		return r.wrap(ctx, err, "update")
	}
	if n == 0 {
		return repository.NotFoundByID(e.GetID())
	}
	return nil
}

// FindByID 按 ID 查找
func (r *Repository[E]) FindByID(ctx context.Context, id string) (E, error) {
	var zero E
	data, err := r.client.HGet(ctx, r.itemsKey, id).Bytes()
	if stdErrors.Is(err, redis.Nil) {
		return zero, repository.NotFoundByID(id)
	}
	if err != nil {
		return zero, r.wrap(ctx, err, "find_by_id")
	}
	e, err := r.codec.Decode(data)
	if err != nil {
		return zero, errors.WrapError(err, errors.ErrCodeInternal, "解码实体失败")
	}
	return e, nil
}

// FindAll 按插入顺序返回全部实体
func (r *Repository[E]) FindAll(ctx context.Context) ([]E, error) {
	ids, err := r.client.ZRange(ctx, r.orderKey, 0, -1).Result()
	if err != nil {
		return nil, r.wrap(ctx, err, "find_all")
	}
	out := make([]E, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	values, err := r.client.HMGet(ctx, r.itemsKey, ids...).Result()
	if err != nil {
		return nil, r.wrap(ctx, err, "find_all")
	}
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// 顺序集合与哈希短暂不一致（并发删除）时跳过
			r.logger.Debug(ctx, "skip missing record", logging.String("id", ids[i]))
			continue
		}
		e, err := r.codec.Decode([]byte(s))
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrCodeInternal, "解码实体失败")
		}
		out = append(out, e)
	}
	return out, nil
}

// Delete 按 ID 删除
func (r *Repository[E]) Delete(ctx context.Context, id string) error {
	return r.DeleteAll(ctx, []string{id})
}

// DeleteAll 原子批量删除，任一 ID 不存在时全部不删除
func (r *Repository[E]) DeleteAll(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	missing, err := deleteScript.Run(ctx, r.client, []string{r.itemsKey, r.orderKey}, args...).Text()
	if err != nil {
		return r.wrap(ctx, err, "delete")
	}
	if missing != "" {
		return repository.NotFoundByID(missing)
	}
	return nil
}

// Search 加载全部实体后执行 Pipeline
func (r *Repository[E]) Search(ctx context.Context, params repository.SearchParams) (repository.SearchResult[E], error) {
	start := time.Now()
	items, err := r.FindAll(ctx)
	if err != nil {
		return repository.SearchResult[E]{}, err
	}
	res := r.pipeline.Run(items, params)

	r.logger.Debug(ctx, "search",
		logging.String("params", params.String()),
		logging.Int("total", res.Total),
		logging.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// SortableFields 可排序字段
func (r *Repository[E]) SortableFields() []string {
	return r.pipeline.SortableFields()
}

func (r *Repository[E]) wrap(ctx context.Context, err error, op string) error {
	return errors.WrapWithLog(ctx, err, errors.ErrCodeCache, "redis 操作失败: "+op,
		logging.String("operation", op),
	)
}

var (
	_ repository.ISearchableRepository[*entity.Entity[struct{}]] = (*Repository[*entity.Entity[struct{}]])(nil)
	_ repository.IBatchOperations[*entity.Entity[struct{}]]      = (*Repository[*entity.Entity[struct{}]])(nil)
)
