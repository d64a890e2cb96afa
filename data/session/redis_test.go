package session

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
	"google.golang.org/genai"
)

func newTestSession(t *testing.T, maxMessages int) (*RedisSession, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{}
	cfg.Session.Expiration = time.Hour
	cfg.Session.MaxMessages = maxMessages

	return NewRedisSession(client, cfg), mr
}

func userText(text string) *genai.Content {
	return genai.NewContentFromText(text, genai.RoleUser)
}

func modelText(text string) *genai.Content {
	return genai.NewContentFromText(text, genai.RoleModel)
}

func TestSession_Lifecycle(t *testing.T) {
	s, mr := newTestSession(t, 10)
	ctx := context.Background()

	_, err := s.Get(ctx, "42")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Set(ctx, model.Session{
		ID: "42",
		History: []*genai.Content{
			userText("price of AAPL?"),
			genai.NewContentFromFunctionCall("get_stock_price", map[string]any{"symbol": "AAPL"}, genai.RoleModel),
			genai.NewContentFromFunctionResponse("get_stock_price", map[string]any{"output": "225"}, genai.RoleUser),
			modelText("AAPL trades at $225."),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL("session:42"))

	got, err := s.Get(ctx, "42")
	require.NoError(t, err)
	require.Len(t, got.History, 4)
	assert.Equal(t, "price of AAPL?", got.History[0].Parts[0].Text)
	assert.Equal(t, "get_stock_price", got.History[1].Parts[0].FunctionCall.Name)
	assert.Equal(t, "AAPL", got.History[1].Parts[0].FunctionCall.Args["symbol"])
	assert.False(t, got.UpdatedAt.IsZero())

	require.NoError(t, s.Delete(ctx, "42"))
	assert.ErrorIs(t, s.Delete(ctx, "42"), ErrNotFound)
}

func TestSession_Expires(t *testing.T) {
	s, mr := newTestSession(t, 10)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, model.Session{ID: "1", History: []*genai.Content{userText("hi")}}))
	mr.FastForward(2 * time.Hour)

	_, err := s.Get(ctx, "1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTrimHistory(t *testing.T) {
	history := []*genai.Content{
		userText("q1"),
		modelText("a1"),
		userText("q2"),
		genai.NewContentFromFunctionCall("get_stock_price", map[string]any{"symbol": "MSFT"}, genai.RoleModel),
		genai.NewContentFromFunctionResponse("get_stock_price", map[string]any{"output": "420"}, genai.RoleUser),
		modelText("a2"),
	}

	assert.Len(t, TrimHistory(history, 0), 6)
	assert.Len(t, TrimHistory(history, 10), 6)

	trimmed := TrimHistory(history, 5)
	require.Len(t, trimmed, 4)
	assert.Equal(t, "q2", trimmed[0].Parts[0].Text)

	// a window opening on a function response must skip to the next user text turn
	trimmed = TrimHistory(history, 2)
	assert.Empty(t, trimmed)
}
