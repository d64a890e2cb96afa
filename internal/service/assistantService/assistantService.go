package assistantService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/KotFed0t/invest_assistant/config"
	"github.com/KotFed0t/invest_assistant/data/cache"
	"github.com/KotFed0t/invest_assistant/data/session"
	"github.com/KotFed0t/invest_assistant/internal/externalApi"
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/internal/service"
	"github.com/KotFed0t/invest_assistant/utils"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

const (
	AgentName = "coordinator"

	MsgAssistantUnavailable = "AI service is not available. Set GEMINI_API_KEY to enable the assistant."

	statusUnhealthy = "unhealthy"
)

type Engine interface {
	Reply(ctx context.Context, history []*genai.Content, message string) (string, []*genai.Content, error)
}

type SessionStore interface {
	Get(ctx context.Context, id string) (model.Session, error)
	Set(ctx context.Context, session model.Session) error
	Delete(ctx context.Context, id string) error
}

type ReplyCache interface {
	GetReply(ctx context.Context, message string) (string, error)
	SetReply(ctx context.Context, message, reply string) error
}

type PriceSource interface {
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
}

type HealthChecker interface {
	Health(ctx context.Context) (model.Health, error)
}

// Agent is a downstream service whose health is reported by AgentsHealth.
type Agent struct {
	Name    string
	Url     string
	Checker HealthChecker
}

type AssistantService struct {
	cfg      *config.Config
	engine   Engine
	sessions SessionStore
	replies  ReplyCache
	prices   PriceSource
	agents   []Agent
	now      func() time.Time
}

// New builds the coordinator service. engine is nil when no LLM key is configured.
func New(cfg *config.Config, engine Engine, sessions SessionStore, replies ReplyCache, prices PriceSource, agents []Agent) *AssistantService {
	return &AssistantService{
		cfg:      cfg,
		engine:   engine,
		sessions: sessions,
		replies:  replies,
		prices:   prices,
		agents:   agents,
		now:      time.Now,
	}
}

func (s *AssistantService) Chat(ctx context.Context, req model.ChatRequest) (model.ChatResponse, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AssistantService.Chat"

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return model.ChatResponse{}, service.ErrEmptyMessage
	}

	res := model.ChatResponse{SessionID: req.SessionID, Agent: AgentName}
	if res.SessionID == "" {
		res.SessionID = uuid.NewString()
	}

	slog.Debug("Chat start", slog.String("rqID", rqID), slog.String("op", op), slog.String("sessionID", res.SessionID))
	defer func() {
		slog.Debug("Chat finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("sessionID", res.SessionID))
	}()

	if s.engine == nil {
		res.Response = MsgAssistantUnavailable
		return res, nil
	}

	cacheable := len(message) < s.cfg.Cache.ReplyMaxMessageLen
	if cacheable {
		reply, err := s.replies.GetReply(ctx, message)
		if err == nil {
			res.Response = reply
			res.Cached = true
			return res, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			slog.Warn("got error from replies.GetReply", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}

	sess, err := s.sessions.Get(ctx, res.SessionID)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			slog.Warn("got error from sessions.Get, starting a new session", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
		sess = model.Session{ID: res.SessionID}
	}

	reply, history, err := s.engine.Reply(ctx, sess.History, message)
	if err != nil {
		return model.ChatResponse{}, fmt.Errorf("%w: %w", service.ErrUnavailable, err)
	}
	res.Response = reply

	sess.History = history
	sess.UpdatedAt = s.now()
	if err = s.sessions.Set(ctx, sess); err != nil {
		slog.Error("got error from sessions.Set", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	if cacheable {
		if err = s.replies.SetReply(ctx, message, reply); err != nil {
			slog.Warn("got error from replies.SetReply", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}

	return res, nil
}

func (s *AssistantService) ResetSession(ctx context.Context, sessionID string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AssistantService.ResetSession"

	slog.Debug("ResetSession start", slog.String("rqID", rqID), slog.String("op", op), slog.String("sessionID", sessionID))

	err := s.sessions.Delete(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from sessions.Delete", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("ResetSession finished", slog.String("rqID", rqID), slog.String("op", op))
	return nil
}

func (s *AssistantService) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	quote, err := s.prices.GetQuote(ctx, symbol)
	switch {
	case err == nil:
		return quote, nil
	case errors.Is(err, externalApi.ErrNotFound):
		return model.Quote{}, fmt.Errorf("%w: %s", service.ErrNotFound, symbol)
	case errors.Is(err, externalApi.ErrBadRequest):
		return model.Quote{}, fmt.Errorf("%w: %q", service.ErrInvalidSymbol, symbol)
	default:
		return model.Quote{}, fmt.Errorf("%w: %w", service.ErrUnavailable, err)
	}
}

// AgentsHealth probes every downstream agent concurrently, order follows the configured agents.
func (s *AssistantService) AgentsHealth(ctx context.Context) []model.AgentStatus {
	res := make([]model.AgentStatus, len(s.agents))

	var wg sync.WaitGroup
	for i, agent := range s.agents {
		wg.Add(1)
		go func() {
			defer wg.Done()

			st := model.AgentStatus{Name: agent.Name, Url: agent.Url, Status: model.StatusHealthy}
			health, err := agent.Checker.Health(ctx)
			switch {
			case err != nil:
				st.Status = statusUnhealthy
				st.Error = err.Error()
			case health.Status != "":
				st.Status = health.Status
			}
			res[i] = st
		}()
	}
	wg.Wait()

	return res
}
