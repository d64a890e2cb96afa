package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KotFed0t/invest_assistant/config"
	"github.com/KotFed0t/invest_assistant/data"
	"github.com/KotFed0t/invest_assistant/data/cache"
	"github.com/KotFed0t/invest_assistant/data/repository"
	"github.com/KotFed0t/invest_assistant/data/session"
	"github.com/KotFed0t/invest_assistant/internal/assistant"
	"github.com/KotFed0t/invest_assistant/internal/externalApi/pricingApi"
	"github.com/KotFed0t/invest_assistant/internal/externalApi/rebalanceApi"
	"github.com/KotFed0t/invest_assistant/internal/logger"
	"github.com/KotFed0t/invest_assistant/internal/service/assistantService"
	"github.com/KotFed0t/invest_assistant/internal/tgbot"
	"github.com/KotFed0t/invest_assistant/internal/transport/http/coordinator"
	"github.com/KotFed0t/invest_assistant/internal/transport/http/pricing"
	"github.com/KotFed0t/invest_assistant/internal/transport/http/rebalance"
	"github.com/KotFed0t/invest_assistant/internal/transport/http/server"
	"github.com/KotFed0t/invest_assistant/internal/transport/telegram"
)

func main() {
	cfg := config.MustLoad()

	logger.Setup(cfg.LogLevel, coordinator.AgentName)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient, err := data.NewRedisClient(ctx, cfg)
	if err != nil {
		slog.Error("redis is not available", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)
	redisSession := session.NewRedisSession(redisClient, cfg)

	var store assistant.TransactionStore
	if cfg.Postgres.Enabled {
		pgClient, err := data.NewPostgresClient(ctx, cfg)
		if err != nil {
			slog.Warn("transaction history disabled", slog.String("err", err.Error()))
		} else {
			defer pgClient.Close()
			store = repository.NewPostgres(cfg, pgClient)
		}
	}

	pricingApiClient := pricingApi.New(cfg)
	rebalanceApiClient := rebalanceApi.New(cfg)

	var engine assistantService.Engine
	if cfg.LLM.ApiKey != "" {
		tools := assistant.NewTools(pricingApiClient, rebalanceApiClient, store)
		geminiEngine, err := assistant.NewEngine(ctx, cfg, tools)
		if err != nil {
			slog.Warn("assistant disabled", slog.String("err", err.Error()))
		} else {
			engine = geminiEngine
		}
	} else {
		slog.Warn("GEMINI_API_KEY is empty, assistant disabled")
	}

	agents := []assistantService.Agent{
		{Name: pricing.AgentName, Url: cfg.API.PricingServiceUrl, Checker: pricingApiClient},
		{Name: rebalance.AgentName, Url: cfg.API.RebalanceServiceUrl, Checker: rebalanceApiClient},
	}

	assistantSrv := assistantService.New(cfg, engine, redisSession, redisCache, pricingApiClient, agents)

	router := server.NewRouter(cfg, coordinator.NewController(cfg, assistantSrv))
	httpServer := server.New(cfg, coordinator.AgentName, cfg.HTTP.CoordinatorPort, router)
	httpServer.Start()

	if cfg.Telegram.Token != "" {
		tgController := telegram.NewController(assistantSrv)

		tgBot, err := tgbot.New(cfg, tgController)
		if err != nil {
			slog.Error("telegram bot disabled", slog.String("err", err.Error()))
		} else {
			tgBot.Start()
			defer tgBot.Stop()
		}
	}

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Stop(shutdownCtx)
}
