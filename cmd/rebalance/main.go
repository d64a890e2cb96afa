package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KotFed0t/invest_assistant/config"
	"github.com/KotFed0t/invest_assistant/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/KotFed0t/invest_assistant/internal/externalApi/pricingApi"
	"github.com/KotFed0t/invest_assistant/internal/logger"
	"github.com/KotFed0t/invest_assistant/internal/reportGenerator/xlsxGenerator"
	"github.com/KotFed0t/invest_assistant/internal/scheduler"
	"github.com/KotFed0t/invest_assistant/internal/service/rebalanceService"
	"github.com/KotFed0t/invest_assistant/internal/transport/http/rebalance"
	"github.com/KotFed0t/invest_assistant/internal/transport/http/server"
)

func main() {
	cfg := config.MustLoad()

	logger.Setup(cfg.LogLevel, rebalance.AgentName)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pricingApiClient := pricingApi.New(cfg)

	reportGenerator := xlsxGenerator.New()

	var storage rebalanceService.CloudStorage
	if cfg.GoogleDrive.CredentialsFile != "" {
		driveApi, err := googleDriveApi.New(ctx, cfg, rebalanceService.ExportFilePrefix)
		if err != nil {
			slog.Warn("google drive disabled, exports are returned inline", slog.String("err", err.Error()))
		} else {
			storage = driveApi
		}
	}

	rebalanceSrv := rebalanceService.New(pricingApiClient, reportGenerator, storage)

	sched, err := scheduler.New()
	if err != nil {
		slog.Error("failed to create scheduler", slog.String("err", err.Error()))
		os.Exit(1)
	}
	if storage != nil {
		err = sched.NewCrontabJob("clean exports", rebalanceSrv.CleanExports, cfg.Jobs.CleanExportsCrontab, false)
		if err != nil {
			slog.Error("failed to schedule exports cleanup", slog.String("err", err.Error()))
			os.Exit(1)
		}
	}
	sched.Start()
	defer sched.Stop()

	router := server.NewRouter(cfg, rebalance.NewController(cfg, rebalanceSrv))
	httpServer := server.New(cfg, rebalance.AgentName, cfg.HTTP.RebalancePort, router)
	httpServer.Start()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Stop(shutdownCtx)
}
