package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/KotFed0t/invest_assistant/config"
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/utils"
	"github.com/redis/go-redis/v9"
)

const (
	quotePrefix = "quote:"
	replyPrefix = "reply:"
)

var ErrMiss = errors.New("cache miss")

type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func (r *RedisCache) SetQuotes(ctx context.Context, quotes []model.Quote) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("start SetQuotes", slog.String("rqID", rqID), slog.Int("count", len(quotes)))

	if len(quotes) == 0 {
		return nil
	}

	pipe := r.redis.Pipeline()
	for _, quote := range quotes {
		quoteJson, err := json.Marshal(quote)
		if err != nil {
			slog.Error(
				"can't marshall quote in SetQuotes",
				slog.String("rqID", rqID),
				slog.String("err", err.Error()),
				slog.Any("quote", quote),
			)
			return errors.New("can't marshall quote")
		}

		pipe.Set(ctx, quotePrefix+quote.Symbol, quoteJson, r.cfg.Cache.QuotesExpiration)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		slog.Error("failed on pipe.Exec", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetQuotes completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetQuote start", slog.String("rqID", rqID), slog.String("symbol", symbol))

	res, err := r.redis.Get(ctx, quotePrefix+symbol).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Quote{}, ErrMiss
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", quotePrefix+symbol))
		return model.Quote{}, err
	}

	quote := model.Quote{}
	err = json.Unmarshal([]byte(res), &quote)
	if err != nil {
		slog.Error(
			"can't unmarshall quote in GetQuote",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return model.Quote{}, errors.New("can't unmarshall quote")
	}

	slog.Debug("GetQuote finished", slog.String("rqID", rqID))

	return quote, nil
}

// GetQuotes returns cached quotes by symbol, symbols without a usable entry are left out.
func (r *RedisCache) GetQuotes(ctx context.Context, symbols []string) (map[string]model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetQuotes start", slog.String("rqID", rqID), slog.Int("count", len(symbols)))

	res := make(map[string]model.Quote, len(symbols))
	if len(symbols) == 0 {
		return res, nil
	}

	keys := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		keys = append(keys, quotePrefix+symbol)
	}

	values, err := r.redis.MGet(ctx, keys...).Result()
	if err != nil {
		slog.Error("failed on redis.MGet", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return nil, err
	}

	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}

		quote := model.Quote{}
		if err = json.Unmarshal([]byte(raw), &quote); err != nil {
			slog.Warn(
				"can't unmarshall quote in GetQuotes",
				slog.String("rqID", rqID),
				slog.String("err", err.Error()),
				slog.String("key", keys[i]),
			)
			continue
		}

		res[symbols[i]] = quote
	}

	slog.Debug("GetQuotes finished", slog.String("rqID", rqID), slog.Int("hits", len(res)))

	return res, nil
}

// ReplyKey normalizes a chat message into a cache key.
func ReplyKey(message string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(message))))
	return replyPrefix + hex.EncodeToString(sum[:])
}

func (r *RedisCache) SetReply(ctx context.Context, message, reply string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetReply start", slog.String("rqID", rqID))

	err := r.redis.Set(ctx, ReplyKey(message), reply, r.cfg.Cache.RepliesExpiration).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetReply finished", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetReply(ctx context.Context, message string) (string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetReply start", slog.String("rqID", rqID))

	reply, err := r.redis.Get(ctx, ReplyKey(message)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrMiss
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return "", err
	}

	slog.Debug("GetReply finished", slog.String("rqID", rqID))

	return reply, nil
}
