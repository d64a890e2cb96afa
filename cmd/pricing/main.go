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
	"github.com/KotFed0t/invest_assistant/internal/externalApi/yahooApi"
	"github.com/KotFed0t/invest_assistant/internal/logger"
	"github.com/KotFed0t/invest_assistant/internal/scheduler"
	"github.com/KotFed0t/invest_assistant/internal/service/pricingService"
	"github.com/KotFed0t/invest_assistant/internal/transport/http/pricing"
	"github.com/KotFed0t/invest_assistant/internal/transport/http/server"
)

func main() {
	cfg := config.MustLoad()

	logger.Setup(cfg.LogLevel, pricing.AgentName)

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

	yahooApiClient := yahooApi.New(cfg)

	pricingSrv := pricingService.New(cfg, redisCache, yahooApiClient)

	sched, err := scheduler.New()
	if err != nil {
		slog.Error("failed to create scheduler", slog.String("err", err.Error()))
		os.Exit(1)
	}
	err = sched.NewIntervalJob("warm quotes", scheduler.Counted("warm quotes", pricingSrv.WarmCache), cfg.Jobs.WarmQuotesInterval, true)
	if err != nil {
		slog.Error("failed to schedule quotes warm up", slog.String("err", err.Error()))
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	router := server.NewRouter(cfg, pricing.NewController(cfg, pricingSrv))
	httpServer := server.New(cfg, pricing.AgentName, cfg.HTTP.PricingPort, router)
	httpServer.Start()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Stop(shutdownCtx)
}
