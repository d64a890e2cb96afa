package externalApi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrBadRequest  = errors.New("bad request")
	ErrBadStatus   = errors.New("unexpected response status")
	ErrRateLimited = errors.New("rate limited by upstream")
)

// ErrorResponse is the error body returned by our own services.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// StatusError converts a non 2xx response of our services into a wrapped sentinel error.
func StatusError(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}

	msg := strings.TrimSpace(string(resp.Body()))
	errResp := ErrorResponse{}
	if err := json.Unmarshal(resp.Body(), &errResp); err == nil && errResp.Error != "" {
		msg = errResp.Error
		if len(errResp.Details) > 0 {
			msg += ": " + strings.Join(errResp.Details, "; ")
		}
	}

	switch resp.StatusCode() {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", ErrBadRequest, msg)
	default:
		return fmt.Errorf("%w: %d %s", ErrBadStatus, resp.StatusCode(), msg)
	}
}

// Retryable retries transport failures and statuses meaning the service is briefly unavailable.
// A 502 already reports a failed upstream behind the service, retrying it only repeats that call.
func Retryable(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	switch r.StatusCode() {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
