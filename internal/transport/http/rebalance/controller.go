package rebalance

import (
	"context"
	"fmt"
	"net/http"

	"github.com/KotFed0t/invest_assistant/config"
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/internal/transport/http/response"
	"github.com/go-chi/chi/v5"
)

const (
	AgentName = "RebalanceAgent"
	xlsxMime  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var capabilities = []string{"portfolio.analysis", "portfolio.rebalancing", "trade.generation", "report.export"}

type RebalanceService interface {
	CreatePlan(ctx context.Context, req model.RebalanceRequest) (model.RebalancePlan, error)
	AnalyzeAllocation(ctx context.Context, req model.RebalanceRequest) (model.AllocationReport, error)
	Valuate(ctx context.Context, portfolio model.Portfolio) (model.Valuation, error)
	ExportPlan(ctx context.Context, req model.RebalanceRequest) (model.PlanExport, error)
}

type Controller struct {
	cfg     *config.Config
	service RebalanceService
}

func NewController(cfg *config.Config, service RebalanceService) *Controller {
	return &Controller{cfg: cfg, service: service}
}

func (ctrl *Controller) Register(r chi.Router) {
	r.Route("/rebalance", func(r chi.Router) {
		r.Post("/plan", ctrl.CreatePlan)
		r.Post("/plan/export", ctrl.ExportPlan)
		r.Post("/allocation", ctrl.AnalyzeAllocation)
		r.Post("/value", ctrl.Valuate)
	})
	r.Get("/health", ctrl.Health)
	r.Get("/.well-known/agent-card", ctrl.AgentCard)
}

// decodeRequest starts from defaults so omitted fields keep their default values.
func decodeRequest(r *http.Request) (model.RebalanceRequest, error) {
	req := model.NewRebalanceRequest()
	err := response.DecodeJSON(r, &req)
	return req, err
}

func (ctrl *Controller) CreatePlan(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r)
	if err != nil {
		response.WriteError(r.Context(), w, err)
		return
	}

	plan, err := ctrl.service.CreatePlan(r.Context(), req)
	if err != nil {
		response.WriteError(r.Context(), w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, plan)
}

func (ctrl *Controller) AnalyzeAllocation(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r)
	if err != nil {
		response.WriteError(r.Context(), w, err)
		return
	}

	report, err := ctrl.service.AnalyzeAllocation(r.Context(), req)
	if err != nil {
		response.WriteError(r.Context(), w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, report)
}

func (ctrl *Controller) Valuate(w http.ResponseWriter, r *http.Request) {
	body := struct {
		Portfolio model.Portfolio `json:"portfolio"`
	}{Portfolio: model.Portfolio{BaseCurrency: model.DefaultBaseCurrency}}

	if err := response.DecodeJSON(r, &body); err != nil {
		response.WriteError(r.Context(), w, err)
		return
	}

	valuation, err := ctrl.service.Valuate(r.Context(), body.Portfolio)
	if err != nil {
		response.WriteError(r.Context(), w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, valuation)
}

// ExportPlan answers with the Drive link when the file was uploaded, otherwise with the xlsx itself.
func (ctrl *Controller) ExportPlan(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r)
	if err != nil {
		response.WriteError(r.Context(), w, err)
		return
	}

	export, err := ctrl.service.ExportPlan(r.Context(), req)
	if err != nil {
		response.WriteError(r.Context(), w, err)
		return
	}

	if export.Link != "" {
		response.WriteJSON(w, http.StatusOK, export)
		return
	}

	w.Header().Set("Content-Type", xlsxMime)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Content)
}

func (ctrl *Controller) Health(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, model.Health{
		Agent:        AgentName,
		Status:       model.StatusHealthy,
		Version:      model.ServiceVersion,
		Capabilities: capabilities,
		Dependencies: map[string]string{"PricingAgent": ctrl.cfg.API.PricingServiceUrl},
	})
}

func (ctrl *Controller) AgentCard(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, model.AgentCard{
		Name:        AgentName,
		Version:     model.ServiceVersion,
		Description: "Portfolio valuation, allocation analysis and rebalancing",
		Endpoints: map[string]string{
			"rebalance_plan": "/rebalance/plan",
			"plan_export":    "/rebalance/plan/export",
			"allocation":     "/rebalance/allocation",
			"value":          "/rebalance/value",
			"health":         "/health",
		},
		Capabilities: capabilities,
		Port:         ctrl.cfg.HTTP.RebalancePort,
		Auth:         "none",
	})
}
