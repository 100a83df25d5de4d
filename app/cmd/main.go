package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"contractrag/app/server"
	"contractrag/config"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("error loading config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	s, err := server.NewServer(context.Background(), cfg)
	if err != nil {
		slog.Error("error to start server", "error", err)
		os.Exit(1)
	}

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	go func() {
		if err := s.Run(); err != nil {
			slog.Error("server exited", "error", err)
			sigch <- syscall.SIGTERM
		}
	}()

	<-sigch
	slog.Info("received shutdown signal, shutting down server")
	s.Stop()
}
