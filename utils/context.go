package utils

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"
)

const RequestIDHeader = "X-Request-ID"

type rqIDKey struct{}

func GetRequestIDFromCtx(ctx context.Context) string {
	rqID, ok := ctx.Value(rqIDKey{}).(string)
	if !ok {
		return ""
	}
	return rqID
}

func ContextWithRqID(ctx context.Context, rqID string) context.Context {
	if rqID == "" {
		rqID = uuid.NewString()
	}
	return context.WithValue(ctx, rqIDKey{}, rqID)
}

func CreateCtxWithRqID(c tele.Context) context.Context {
	rqId, _ := c.Get("rqID").(string)
	return ContextWithRqID(context.Background(), rqId)
}

// CreateHttpCtxWithRqID reuses the caller's X-Request-ID when present so a chat turn can be traced
// through coordinator, pricing and rebalance logs.
func CreateHttpCtxWithRqID(r *http.Request) context.Context {
	return ContextWithRqID(r.Context(), r.Header.Get(RequestIDHeader))
}
