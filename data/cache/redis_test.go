package cache

import (
	"context"
	"testing"
	"time"

	"github.com/KotFed0t/invest_assistant/config"
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{}
	cfg.Cache.QuotesExpiration = time.Minute
	cfg.Cache.RepliesExpiration = 5 * time.Minute

	return NewRedisCache(client, cfg), mr
}

func TestQuotes_SetAndGet(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	err := c.SetQuotes(ctx, []model.Quote{
		{Symbol: "AAPL", Price: 225, Currency: "USD"},
		{Symbol: "MSFT", Price: 420, Currency: "USD"},
	})
	require.NoError(t, err)

	quote, err := c.GetQuote(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 225.0, quote.Price)

	quotes, err := c.GetQuotes(ctx, []string{"MSFT", "NVDA", "AAPL"})
	require.NoError(t, err)
	assert.Len(t, quotes, 2)
	assert.Equal(t, 420.0, quotes["MSFT"].Price)

	mr.FastForward(61 * time.Second)

	_, err = c.GetQuote(ctx, "AAPL")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestGetQuotes_SkipsCorruptEntries(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("quote:AAPL", "not json"))

	quotes, err := c.GetQuotes(context.Background(), []string{"AAPL"})
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestReplies(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, err := c.GetReply(ctx, "Hello")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.SetReply(ctx, "  Price of AAPL? ", "AAPL is $225"))

	reply, err := c.GetReply(ctx, "price of aapl?")
	require.NoError(t, err)
	assert.Equal(t, "AAPL is $225", reply)

	assert.Equal(t, 5*time.Minute, mr.TTL(ReplyKey("price of aapl?")))
}

func TestReplyKey(t *testing.T) {
	assert.Equal(t, ReplyKey("Hi"), ReplyKey(" hi "))
	assert.NotEqual(t, ReplyKey("hi"), ReplyKey("hello"))
	assert.Len(t, ReplyKey("x"), len("reply:")+32)
}
