package response

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/KotFed0t/invest_assistant/internal/externalApi"
	"github.com/KotFed0t/invest_assistant/internal/planner"
	"github.com/KotFed0t/invest_assistant/internal/service"
	"github.com/KotFed0t/invest_assistant/utils"
)

const maxBodyBytes = 1 << 20

var ErrBadBody = errors.New("invalid request body")

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", slog.String("err", err.Error()))
	}
}

// DecodeJSON reads a JSON body into v, any failure is reported as ErrBadBody.
func DecodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadBody, err)
	}
	return nil
}

// WriteError maps service and transport errors to a status and an ErrorResponse body.
func WriteError(ctx context.Context, w http.ResponseWriter, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	body := externalApi.ErrorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	var validationErr *planner.ValidationError
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		body.Error = "invalid rebalance request"
		body.Details = validationErr.Problems
	case errors.Is(err, ErrBadBody),
		errors.Is(err, service.ErrInvalidSymbol),
		errors.Is(err, service.ErrTooManySymbols),
		errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, externalApi.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrStorageNotEnabled):
		status = http.StatusNotImplemented
	case errors.Is(err, service.ErrUnavailable):
		status = http.StatusBadGateway
	default:
		body.Error = "internal error"
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", slog.String("rqID", rqID), slog.Int("status", status), slog.String("err", err.Error()))
	} else {
		slog.Debug("request rejected", slog.String("rqID", rqID), slog.Int("status", status), slog.String("err", err.Error()))
	}

	WriteJSON(w, status, body)
}
