package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/KotFed0t/invest_assistant/config"
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/utils"
	"github.com/redis/go-redis/v9"
	"google.golang.org/genai"
)

const sessionPrefix = "session:"

var ErrNotFound = errors.New("session not found")

type RedisSession struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisSession(redisClient *redis.Client, cfg *config.Config) *RedisSession {
	return &RedisSession{redis: redisClient, cfg: cfg}
}

func (r *RedisSession) Get(ctx context.Context, id string) (model.Session, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("RedisSession.Get start", slog.String("rqID", rqID), slog.String("sessionID", id))

	res, err := r.redis.Get(ctx, sessionPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Session{}, ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return model.Session{}, err
	}

	session := model.Session{}
	if err = json.Unmarshal([]byte(res), &session); err != nil {
		slog.Error("can't unmarshall session", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return model.Session{}, errors.New("can't unmarshall session")
	}

	slog.Debug("RedisSession.Get finished", slog.String("rqID", rqID), slog.Int("history", len(session.History)))

	return session, nil
}

// Set stores the session with a trimmed history and refreshes its expiration.
func (r *RedisSession) Set(ctx context.Context, session model.Session) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("RedisSession.Set start", slog.String("rqID", rqID), slog.String("sessionID", session.ID))

	session.History = TrimHistory(session.History, r.cfg.Session.MaxMessages)
	session.UpdatedAt = time.Now().UTC()

	sessionJson, err := json.Marshal(session)
	if err != nil {
		slog.Error("can't marshall session", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return errors.New("can't marshall session")
	}

	err = r.redis.Set(ctx, sessionPrefix+session.ID, sessionJson, r.cfg.Session.Expiration).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("RedisSession.Set finished", slog.String("rqID", rqID))

	return nil
}

func (r *RedisSession) Delete(ctx context.Context, id string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("RedisSession.Delete start", slog.String("rqID", rqID), slog.String("sessionID", id))

	deleted, err := r.redis.Del(ctx, sessionPrefix+id).Result()
	if err != nil {
		slog.Error("failed on redis.Del", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	if deleted == 0 {
		return ErrNotFound
	}

	slog.Debug("RedisSession.Delete finished", slog.String("rqID", rqID))

	return nil
}

// TrimHistory keeps at most maxMessages of the newest contents. The kept history always opens
// with a user text turn so that function calls are never separated from their responses.
func TrimHistory(history []*genai.Content, maxMessages int) []*genai.Content {
	if maxMessages <= 0 || len(history) <= maxMessages {
		return history
	}

	trimmed := history[len(history)-maxMessages:]
	for i, content := range trimmed {
		if isUserText(content) {
			return trimmed[i:]
		}
	}

	return []*genai.Content{}
}

func isUserText(content *genai.Content) bool {
	if content == nil || content.Role != genai.RoleUser {
		return false
	}

	for _, part := range content.Parts {
		if part != nil && part.FunctionResponse != nil {
			return false
		}
	}

	return true
}
