package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentimentdashboard "sentiment-dashboard/agents/sentiment-dashboard"
	"sentiment-dashboard/shared/config"
	"sentiment-dashboard/shared/monitoring"
	"sentiment-dashboard/shared/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create context that responds to signals
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	monitor := monitoring.NewMonitor()
	agent := sentimentdashboard.NewDashboardAgent(cfg)
	s := scheduler.New(cfg.Data.ReloadSchedule, agent, monitor)

	// Missing data files or unusable credentials stop the process before serving
	if err := s.Initialize(ctx); err != nil {
		log.Fatalf("Failed to start dashboard: %v", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "--once" {
		fmt.Println(monitor.GetStatusSummary())
		return
	}

	dashboard := sentimentdashboard.NewDashboard(cfg, agent.Snapshot, agent.Analyzer())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           sentimentdashboard.NewServer(dashboard, agent.Snapshot, monitoring.NewHealthHandler(monitor)),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      2 * time.Minute, // live analysis blocks the request
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := s.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Scheduler failed: %v", err)
		}
	}()

	go func() {
		log.Printf("Dashboard listening on :%d (modes: %v)", cfg.Server.Port, dashboard.Modes())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
		_ = srv.Close()
	}
	log.Println("Dashboard stopped")
}
