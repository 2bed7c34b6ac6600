package main

import (
	"context"
	"log"
	"time"

	"ai-voice-assistant-be/internal/config"
	"ai-voice-assistant-be/internal/entity"
	"ai-voice-assistant-be/internal/pkg/logger"
	"ai-voice-assistant-be/internal/repository/unitofwork"
	"ai-voice-assistant-be/internal/service"
	"ai-voice-assistant-be/pkg/database"
	"ai-voice-assistant-be/pkg/vapi"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()
	if cfg.Vapi.PrivateKey == "" {
		log.Fatal("VAPI_PRIVATE_KEY is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}

	assistants := service.NewAssistantService(
		unitofwork.NewRepositoryFactory(db),
		vapi.NewHTTPClient(cfg.Vapi.BaseURL, cfg.Vapi.PrivateKey, cfg.Vapi.RequestLimit),
		cfg.Vapi,
		cfg.Voice.MaxCallSeconds,
		nil,
		nil,
		logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction()),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	color.Cyan("🧹 Checking stored assistants against Vapi\n")
	res, err := assistants.Cleanup(ctx)
	if err != nil {
		color.Red("Cleanup failed: %v", err)
		return
	}

	for _, r := range res.Results {
		switch r.Status {
		case entity.CleanupStatusDeleted:
			color.Yellow("%-8s %s  %-16s %s", r.Status, r.Id, r.Mode, r.VapiId)
		case entity.CleanupStatusError:
			color.Red("error    %s  %-16s %s: %s", r.Id, r.Mode, r.VapiId, r.Error)
		default:
			color.Green("%-8s %s  %-16s %s", r.Status, r.Id, r.Mode, r.VapiId)
		}
	}
	color.Cyan("\n✅ %s", res.Message)
}
