package cached

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repokit/domain/entity"
	"repokit/domain/repository"
	"repokit/storage/memory"
)

type props struct {
	Name string `json:"name"`
}

type item = *entity.Entity[props]

// counting 统计 FindByID 调用次数，gate 非空时阻塞到关闭
type counting struct {
	repository.ISearchableRepository[item]
	finds atomic.Int32
	gate  chan struct{}
}

func (c *counting) FindByID(ctx context.Context, id string) (item, error) {
	c.finds.Add(1)
	if c.gate != nil {
		<-c.gate
	}
	return c.ISearchableRepository.FindByID(ctx, id)
}

func newBackend() *counting {
	mem := memory.NewSearchable(
		func(e item, filter string) bool {
			return strings.Contains(strings.ToLower(e.Props.Name), strings.ToLower(filter))
		},
		repository.NewFields(repository.StringField("name", func(e item) string { return e.Props.Name })),
	)
	return &counting{ISearchableRepository: mem}
}

func TestCached_FindByIDHitsBackendOnce(t *testing.T) {
	backend := newBackend()
	ctx := context.Background()

	e := entity.New(props{Name: "a"})
	require.NoError(t, backend.Insert(ctx, e))

	repo := New[item](backend, Config{MaxSize: 10, TTL: time.Minute})
	for i := 0; i < 3; i++ {
		got, err := repo.FindByID(ctx, e.GetID())
		require.NoError(t, err)
		assert.Equal(t, "a", got.Props.Name)
	}
	assert.Equal(t, int32(1), backend.finds.Load())
	assert.Equal(t, int64(2), repo.Stats().Hits)
}

func TestCached_InsertDoesNotPrime(t *testing.T) {
	backend := newBackend()
	repo := New[item](backend, Config{})
	ctx := context.Background()

	first := entity.New(props{Name: "first"}, "dup")
	require.NoError(t, repo.Insert(ctx, first))
	got, err := repo.FindByID(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Props.Name)
	assert.Equal(t, int32(1), backend.finds.Load())

	// 内存后端允许重复 ID，缓存结果与后端保持一致
	require.NoError(t, repo.Insert(ctx, entity.New(props{Name: "second"}, "dup")))
	got, err = repo.FindByID(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Props.Name)

	direct, err := backend.FindByID(ctx, "dup")
	require.NoError(t, err)
	assert.Same(t, direct, got)
}

// staleRead 读取后端后阻塞到 release 关闭，模拟读取与写入交错
type staleRead struct {
	repository.ISearchableRepository[item]
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (s *staleRead) FindByID(ctx context.Context, id string) (item, error) {
	e, err := s.ISearchableRepository.FindByID(ctx, id)
	s.once.Do(func() { close(s.read) })
	<-s.release
	return e, err
}

func TestCached_WriteDuringMissIsNotCached(t *testing.T) {
	tests := []struct {
		name  string
		write func(ctx context.Context, repo *Repository[item], id string) error
		check func(t *testing.T, got item, err error)
	}{
		{
			name: "读取期间更新",
			write: func(ctx context.Context, repo *Repository[item], id string) error {
				return repo.Update(ctx, entity.New(props{Name: "new"}, id))
			},
			check: func(t *testing.T, got item, err error) {
				require.NoError(t, err)
				assert.Equal(t, "new", got.Props.Name)
			},
		},
		{
			name: "读取期间删除",
			write: func(ctx context.Context, repo *Repository[item], id string) error {
				return repo.Delete(ctx, id)
			},
			check: func(t *testing.T, _ item, err error) {
				assert.True(t, repository.IsNotFound(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			backend := &staleRead{
				ISearchableRepository: newBackend(),
				read:                  make(chan struct{}),
				release:               make(chan struct{}),
			}
			repo := New[item](backend, Config{TTL: time.Minute})

			e := entity.New(props{Name: "old"})
			require.NoError(t, repo.Insert(ctx, e))

			done := make(chan item, 1)
			go func() {
				got, err := repo.FindByID(ctx, e.GetID())
				assert.NoError(t, err)
				done <- got
			}()

			<-backend.read
			require.NoError(t, tt.write(ctx, repo, e.GetID()))
			close(backend.release)

			// 交错读取本身可以返回旧值
			assert.Equal(t, "old", (<-done).Props.Name)

			got, err := repo.FindByID(ctx, e.GetID())
			tt.check(t, got, err)
		})
	}
}

func TestCached_UpdateAndDeleteInvalidate(t *testing.T) {
	backend := newBackend()
	repo := New[item](backend, Config{})
	ctx := context.Background()

	e := entity.New(props{Name: "a"})
	require.NoError(t, repo.Insert(ctx, e))

	updated := entity.New(props{Name: "b"}, e.GetID())
	require.NoError(t, repo.Update(ctx, updated))

	got, err := repo.FindByID(ctx, e.GetID())
	require.NoError(t, err)
	assert.Equal(t, "b", got.Props.Name)
	assert.Equal(t, int32(1), backend.finds.Load())

	require.NoError(t, repo.Delete(ctx, e.GetID()))
	_, err = repo.FindByID(ctx, e.GetID())
	assert.True(t, repository.IsNotFound(err))

	// 未找到不写入缓存
	_, err = repo.FindByID(ctx, e.GetID())
	assert.True(t, repository.IsNotFound(err))
	assert.Equal(t, int32(3), backend.finds.Load())
}

func TestCached_NotFoundPassThrough(t *testing.T) {
	repo := New[item](newBackend(), Config{})
	ctx := context.Background()

	assert.True(t, repository.IsNotFound(repo.Update(ctx, entity.New(props{Name: "x"}))))
	assert.True(t, repository.IsNotFound(repo.Delete(ctx, "missing")))
}

func TestCached_ConcurrentMissesCollapse(t *testing.T) {
	backend := newBackend()
	ctx := context.Background()
	e := entity.New(props{Name: "a"})
	require.NoError(t, backend.Insert(ctx, e))

	backend.gate = make(chan struct{})
	repo := New[item](backend, Config{})

	const n = 8
	var (
		wg    sync.WaitGroup
		ready sync.WaitGroup
	)
	ready.Add(n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ready.Done()
			got, err := repo.FindByID(ctx, e.GetID())
			assert.NoError(t, err)
			assert.Equal(t, e.GetID(), got.GetID())
		}()
	}
	ready.Wait()
	// 等待首个请求进入后端
	require.Eventually(t, func() bool { return backend.finds.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(backend.gate)
	wg.Wait()

	assert.Less(t, backend.finds.Load(), int32(n))
}

func TestCached_SearchPassThrough(t *testing.T) {
	backend := newBackend()
	repo := New[item](backend, Config{})
	ctx := context.Background()

	for _, n := range []string{"b", "a"} {
		require.NoError(t, repo.Insert(ctx, entity.New(props{Name: n})))
	}

	res, err := repo.Search(ctx, repository.NewSearchParams(repository.SearchInput{Sort: "name", SortDir: "asc"}))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, "a", res.Items[0].Props.Name)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, []string{"name"}, repo.SortableFields())
	assert.Same(t, backend, repo.Unwrap())
}
