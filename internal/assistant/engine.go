package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/invest_assistant/config"
	"github.com/KotFed0t/invest_assistant/utils"
	"google.golang.org/genai"
)

var (
	ErrToolRoundsExceeded = errors.New("too many tool rounds")
	ErrEmptyReply         = errors.New("model returned an empty reply")
)

// Engine runs one chat turn against Gemini, resolving tool calls until the model answers with text.
type Engine struct {
	client    *genai.Client
	model     string
	config    *genai.GenerateContentConfig
	library   Library
	maxRounds int
}

func NewEngine(ctx context.Context, cfg *config.Config, functions []Function) (*Engine, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.LLM.ApiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		slog.Error("failed on genai.NewClient", slog.String("err", err.Error()))
		return nil, err
	}
	return NewEngineWithClient(client, cfg, functions), nil
}

func NewEngineWithClient(client *genai.Client, cfg *config.Config, functions []Function) *Engine {
	return &Engine{
		client: client,
		model:  cfg.LLM.Model,
		config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclarations(functions)},
			},
			MaxOutputTokens: cfg.LLM.MaxTokens,
			Temperature:     genai.Ptr(cfg.LLM.Temperature),
		},
		library:   NewLibrary(functions),
		maxRounds: cfg.LLM.MaxToolRounds,
	}
}

// Reply sends message after history and returns the answer with the updated history.
func (e *Engine) Reply(ctx context.Context, history []*genai.Content, message string) (reply string, newHistory []*genai.Content, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Engine.Reply"

	slog.Debug("Reply start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("history", len(history)))
	defer func() {
		if err != nil {
			slog.Error("Reply failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("Reply finished", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	chat, err := e.client.Chats.Create(ctx, e.model, e.config, history)
	if err != nil {
		return "", nil, fmt.Errorf("create chat: %w", err)
	}

	resp, err := chat.Send(ctx, genai.NewPartFromText(message))
	if err != nil {
		return "", nil, fmt.Errorf("send message: %w", err)
	}

	for round := 0; ; round++ {
		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			break
		}
		if round >= e.maxRounds {
			return "", nil, ErrToolRoundsExceeded
		}

		parts := make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			slog.Info("tool call", slog.String("rqID", rqID), slog.String("tool", call.Name), slog.Any("args", call.Args))
			parts = append(parts, &genai.Part{FunctionResponse: e.library(ctx, call)})
		}

		resp, err = chat.Send(ctx, parts...)
		if err != nil {
			return "", nil, fmt.Errorf("send tool results: %w", err)
		}
	}

	reply = resp.Text()
	if reply == "" {
		return "", nil, ErrEmptyReply
	}

	return reply, chat.History(true), nil
}
