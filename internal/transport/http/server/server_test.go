package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KotFed0t/invest_assistant/config"
	"github.com/KotFed0t/invest_assistant/utils"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingController struct{}

func (pingController) Register(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(utils.GetRequestIDFromCtx(r.Context())))
	})
	r.Get("/panic", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
}

func testConfig() *config.Config {
	return &config.Config{HTTP: config.HTTP{
		Host:           "127.0.0.1",
		RequestTimeout: 5 * time.Second,
		ReadTimeout:    time.Second,
		WriteTimeout:   time.Second,
	}}
}

func TestNewRouter_RequestID(t *testing.T) {
	router := NewRouter(testConfig(), pingController{})

	t.Run("reuses caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(utils.RequestIDHeader, "rq-42")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "rq-42", rec.Body.String())
		assert.Equal(t, "rq-42", rec.Header().Get(utils.RequestIDHeader))
	})

	t.Run("generates id", func(t *testing.T) {
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Body.String())
		assert.Equal(t, rec.Body.String(), rec.Header().Get(utils.RequestIDHeader))
	})
}

func TestNewRouter_RecoversPanics(t *testing.T) {
	router := NewRouter(testConfig(), pingController{})
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNewRouter_CORSPreflight(t *testing.T) {
	router := NewRouter(testConfig(), pingController{})

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_StartStop(t *testing.T) {
	srv := New(testConfig(), "test", 0, NewRouter(testConfig()))
	require.Equal(t, "127.0.0.1:0", srv.server.Addr)

	srv.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	srv.Stop(ctx)
}
