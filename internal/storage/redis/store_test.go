package redis_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/adanyl0v/go-todo-tracker/internal/models"
	"github.com/adanyl0v/go-todo-tracker/internal/storage"
	redisstore "github.com/adanyl0v/go-todo-tracker/internal/storage/redis"
	"github.com/adanyl0v/go-todo-tracker/internal/storage/storagetest"
)

func newStore(mr *miniredis.Miniredis) *redisstore.Store {
	return redisstore.New(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	suite.Run(t, &storagetest.Suite{
		NewStore: func() storage.Store {
			mr.FlushAll()
			return newStore(mr)
		},
		MissingID: uuid.NewString(),
	})
}

func TestRedisStore_PingFailsWhenServerIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	store := newStore(mr)
	defer store.Close(context.Background())

	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.Error(t, store.Ping(ctx))
}

func TestRedisStore_ConcurrentUpdatesAreLastWriteWinsPerField(t *testing.T) {
	mr := miniredis.RunT(t)
	store := newStore(mr)
	defer store.Close(context.Background())
	ctx := context.Background()

	user := &models.User{Username: "alice"}
	require.NoError(t, store.CreateUser(ctx, user))
	task := &models.Task{UserID: user.ID, Text: "buy milk", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.CreateTask(ctx, task))

	completed := true
	category := "groceries"
	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = store.UpdateTask(ctx, task.ID, user.ID, models.TaskPatch{Completed: &completed})
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = store.UpdateTask(ctx, task.ID, user.ID, models.TaskPatch{Category: &category, CategorySet: true})
	}()
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	found, err := store.GetTaskByID(ctx, task.ID)
	require.NoError(t, err)
	require.True(t, found.Completed)
	require.Equal(t, "groceries", *found.Category)
	require.Equal(t, "buy milk", found.Text)
}
