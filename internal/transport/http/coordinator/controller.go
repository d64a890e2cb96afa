package coordinator

import (
	"context"
	"net/http"

	"github.com/KotFed0t/invest_assistant/config"
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/internal/transport/http/response"
	"github.com/go-chi/chi/v5"
)

const AgentName = "OrchestratorAgent"

var capabilities = []string{"agent_coordination", "chat_interface", "portfolio_analysis", "stock_pricing"}

type AssistantService interface {
	Chat(ctx context.Context, req model.ChatRequest) (model.ChatResponse, error)
	ResetSession(ctx context.Context, sessionID string) error
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
	AgentsHealth(ctx context.Context) []model.AgentStatus
}

type Controller struct {
	cfg     *config.Config
	service AssistantService
}

func NewController(cfg *config.Config, service AssistantService) *Controller {
	return &Controller{cfg: cfg, service: service}
}

func (ctrl *Controller) Register(r chi.Router) {
	r.Post("/chat", ctrl.Chat)
	r.Post("/chat/message", ctrl.Chat)
	r.Delete("/chat/{sessionID}", ctrl.ResetSession)
	r.Get("/price/{symbol}", ctrl.GetQuote)
	r.Get("/agents", ctrl.Agents)
	r.Get("/health", ctrl.Health)
	r.Get("/.well-known/agent-card", ctrl.AgentCard)
}

func (ctrl *Controller) Chat(w http.ResponseWriter, r *http.Request) {
	req := model.ChatRequest{}
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(r.Context(), w, err)
		return
	}

	res, err := ctrl.service.Chat(r.Context(), req)
	if err != nil {
		response.WriteError(r.Context(), w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, res)
}

func (ctrl *Controller) ResetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := ctrl.service.ResetSession(r.Context(), sessionID); err != nil {
		response.WriteError(r.Context(), w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]string{"session_id": sessionID, "status": "reset"})
}

func (ctrl *Controller) GetQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := ctrl.service.GetQuote(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		response.WriteError(r.Context(), w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, quote)
}

func (ctrl *Controller) Agents(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, ctrl.service.AgentsHealth(r.Context()))
}

func (ctrl *Controller) Health(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, model.Health{
		Agent:        AgentName,
		Status:       model.StatusHealthy,
		Version:      model.ServiceVersion,
		Capabilities: capabilities,
		Dependencies: map[string]string{
			"PricingAgent":   ctrl.cfg.API.PricingServiceUrl,
			"RebalanceAgent": ctrl.cfg.API.RebalanceServiceUrl,
		},
	})
}

func (ctrl *Controller) AgentCard(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, model.AgentCard{
		Name:        AgentName,
		Version:     model.ServiceVersion,
		Description: "Portfolio assistant coordinating the pricing and rebalance agents",
		Endpoints: map[string]string{
			"chat":   "/chat",
			"price":  "/price/{symbol}",
			"agents": "/agents",
			"health": "/health",
		},
		Capabilities: capabilities,
		Port:         ctrl.cfg.HTTP.CoordinatorPort,
		Auth:         "none",
	})
}
