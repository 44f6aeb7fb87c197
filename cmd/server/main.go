package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/All-About-AI-YouTube/fps-game/internal/config"
	"github.com/All-About-AI-YouTube/fps-game/internal/httpapi"
	"github.com/All-About-AI-YouTube/fps-game/internal/hub"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx := context.Background()
	h := hub.NewHub(ctx, time.Duration(cfg.CountdownSeconds)*time.Second, sugar)

	// Build the router *with* the hub injected
	handler := httpapi.SetupRoutes(h, cfg.StaticDir, sugar)

	sugar.Infow("listening", "port", cfg.Port, "static", cfg.StaticDir)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		sugar.Fatal(err)
	}
}
