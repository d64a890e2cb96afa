package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/KotFed0t/invest_assistant/internal/converter/telebotConverter"
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/internal/service"
	"github.com/KotFed0t/invest_assistant/utils"
	tele "gopkg.in/telebot.v4"
)

const (
	greetingMsg    = "Hello! I am your portfolio assistant. Ask me about stock prices, your holdings or how to rebalance them.\nSend /reset to start a new conversation."
	resetMsg       = "Conversation cleared."
	internalErrMsg = "Something went wrong, please try again later."
)

type AssistantService interface {
	Chat(ctx context.Context, req model.ChatRequest) (model.ChatResponse, error)
	ResetSession(ctx context.Context, sessionID string) error
}

type Controller struct {
	assistantService AssistantService
}

func NewController(assistantService AssistantService) *Controller {
	return &Controller{assistantService: assistantService}
}

func sessionID(c tele.Context) string {
	return strconv.FormatInt(c.Chat().ID, 10)
}

func (ctrl *Controller) Start(c tele.Context) error {
	return c.Send(greetingMsg)
}

func (ctrl *Controller) Reset(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	err := ctrl.assistantService.ResetSession(ctx, sessionID(c))
	if err != nil && !errors.Is(err, service.ErrNotFound) {
		slog.Error("got error from assistantService.ResetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send(resetMsg)
}

// Chat treats every text message as a turn of the conversation bound to the chat.
func (ctrl *Controller) Chat(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	_ = c.Notify(tele.Typing)

	res, err := ctrl.assistantService.Chat(ctx, model.ChatRequest{Message: c.Text(), SessionID: sessionID(c)})
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			return nil
		}
		slog.Error("got error from assistantService.Chat", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	for _, part := range telebotConverter.ChatReply(res.Response) {
		if err = c.Send(part); err != nil {
			return err
		}
	}
	return nil
}
