// Command server is the entry point for the Pitchside admin API.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pitchside/internal/bootstrap"
	"pitchside/internal/config"
	"pitchside/internal/middleware"
	"pitchside/internal/server"
)

// @title Pitchside API
// @version 1.0
// @description Admin backend for a sports streaming site: streams, live TV, highlights, announcements, ads and links.

// @contact.name API Support
// @contact.email support@pitchside.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:5000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	rt, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{
		StartSweeper: true,
		EnsureAdmin:  true,
	})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	srv, err := server.NewServer(server.Deps{
		Config:  cfg,
		DB:      rt.DB,
		Redis:   rt.Redis,
		Cache:   rt.Cache,
		Sweeper: rt.Sweeper,
	})
	if err != nil {
		_ = rt.Close(context.Background())
		log.Fatalf("Failed to create server: %v", err)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			middleware.Logger.Error("Server shutdown error", "error", err)
		}
	}()

	if err := srv.Start(); err != nil {
		middleware.Logger.Error("Server stopped", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := rt.Close(ctx); err != nil {
		middleware.Logger.Error("Runtime shutdown error", "error", err)
	}
}
