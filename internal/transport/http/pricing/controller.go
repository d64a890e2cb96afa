package pricing

import (
	"context"
	"net/http"

	"github.com/KotFed0t/invest_assistant/config"
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/internal/transport/http/response"
	"github.com/go-chi/chi/v5"
)

const AgentName = "PricingAgent"

var capabilities = []string{"stock.pricing", "market.data", "yahoo.finance.integration"}

type PricingService interface {
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
	GetQuotes(ctx context.Context, symbols []string) (model.QuotesResponse, error)
}

type Controller struct {
	cfg     *config.Config
	service PricingService
}

func NewController(cfg *config.Config, service PricingService) *Controller {
	return &Controller{cfg: cfg, service: service}
}

func (ctrl *Controller) Register(r chi.Router) {
	r.Get("/price/{symbol}", ctrl.GetQuote)
	r.Post("/prices", ctrl.GetQuotes)
	r.Get("/health", ctrl.Health)
	r.Get("/.well-known/agent-card", ctrl.AgentCard)
}

func (ctrl *Controller) GetQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := ctrl.service.GetQuote(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		response.WriteError(r.Context(), w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, quote)
}

// GetQuotes takes a JSON array of symbols and answers with every quote it could resolve.
func (ctrl *Controller) GetQuotes(w http.ResponseWriter, r *http.Request) {
	symbols := make([]string, 0)
	if err := response.DecodeJSON(r, &symbols); err != nil {
		response.WriteError(r.Context(), w, err)
		return
	}

	res, err := ctrl.service.GetQuotes(r.Context(), symbols)
	if err != nil {
		response.WriteError(r.Context(), w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, res)
}

func (ctrl *Controller) Health(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, model.Health{
		Agent:        AgentName,
		Status:       model.StatusHealthy,
		Version:      model.ServiceVersion,
		Capabilities: capabilities,
		Dependencies: map[string]string{"yahoo_finance": ctrl.cfg.API.YahooApi.Url},
	})
}

func (ctrl *Controller) AgentCard(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, model.AgentCard{
		Name:        AgentName,
		Version:     model.ServiceVersion,
		Description: "Market data and stock pricing",
		Endpoints: map[string]string{
			"price":           "/price/{symbol}",
			"multiple_prices": "/prices",
			"health":          "/health",
		},
		Capabilities: capabilities,
		Port:         ctrl.cfg.HTTP.PricingPort,
		Auth:         "none",
	})
}
