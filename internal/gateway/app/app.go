package app

import (
	"context"
	"fmt"

	"echoserver/internal/echo/counter"
	"echoserver/internal/echo/engine"
	"echoserver/internal/gateway/config"
	"echoserver/internal/gateway/handler"
	"echoserver/internal/gateway/server"
	"echoserver/internal/safeio"
)

type App struct {
	server *server.Server
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	fs, err := safeio.NewSafeFS(cfg.ResponsesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve responses dir %q: %w", cfg.ResponsesDir, err)
	}

	store := counter.NewStore()
	eng := engine.New(fs, store, cfg.MaxIncludeDepth)
	eng.DefaultStatus = cfg.DefaultStatus
	eng.DefaultDelay = cfg.DefaultDelay

	echoHandler := handler.NewEchoHandler(eng)
	controlHandler := handler.NewControlHandler(store)

	mux := server.NewMux(echoHandler, controlHandler)
	srv := server.New(cfg.Port, mux)

	return &App{
		server: srv,
	}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}
