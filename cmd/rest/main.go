package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ai-voice-assistant-be/internal/bootstrap"
	"ai-voice-assistant-be/internal/config"
	"ai-voice-assistant-be/internal/server"
	"ai-voice-assistant-be/internal/tracer"
	"ai-voice-assistant-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Tracing (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.IsProduction())
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Start Background Services
	go container.WebSocketHub.Run(ctx)

	go func() {
		log.Println("Background: Starting Reconcile Service...")
		if err := container.ReconcileService.Consume(ctx); err != nil {
			log.Printf("Background Reconcile Error: %v", err)
		}
	}()

	if err := container.ActivityService.Start(ctx); err != nil {
		log.Printf("Background Activity Feed Error: %v", err)
	}

	// 6. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// 7. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
