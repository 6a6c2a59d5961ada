package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/nody/pkg/adapters/redis"
	"github.com/aretw0/nody/pkg/domain"
	contract "github.com/aretw0/nody/pkg/ports/tests"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, opts ...redis.Option) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	store := redis.NewFromClient(client, opts...)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStore_Contract(t *testing.T) {
	store, _ := newStore(t)
	contract.RunGraphStoreContract(t, store)
}

func TestRedisStore_Prefix(t *testing.T) {
	store, mr := newStore(t, redis.WithPrefix("game:"))
	ctx := context.Background()

	err := store.SaveGraph(ctx, &domain.GraphDocument{
		ID:    "main",
		Nodes: []domain.NodeDocument{{ID: "start", Type: domain.NodeTypeStart}},
	})
	require.NoError(t, err)

	assert.True(t, mr.Exists("game:doc:main"))
	members, err := mr.SMembers("game:index")
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, members)
}

func TestRedisStore_CorruptDocument(t *testing.T) {
	store, mr := newStore(t)
	require.NoError(t, mr.Set(redis.DefaultPrefix+"doc:broken", "{not json"))

	_, err := store.LoadGraph(context.Background(), "broken")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrGraphNotFound)
}

func TestRedisStore_IndexID(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	for _, id := range []string{"main", "index"} {
		require.NoError(t, store.SaveGraph(ctx, &domain.GraphDocument{
			ID:    id,
			Nodes: []domain.NodeDocument{{ID: "start", Type: domain.NodeTypeStart}},
		}))
	}

	ids, err := store.ListGraphs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"index", "main"}, ids)

	doc, err := store.LoadGraph(ctx, "index")
	require.NoError(t, err)
	assert.Equal(t, "index", doc.ID)
	assert.True(t, mr.Exists(redis.DefaultPrefix+"doc:index"))

	require.NoError(t, store.DeleteGraph(ctx, "index"))
	ids, err = store.ListGraphs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, ids)
}
