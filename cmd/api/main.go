package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"call-coach-go/internal/api"
	"call-coach-go/internal/config"
	"call-coach-go/internal/events"
	"call-coach-go/internal/logger"
	"call-coach-go/internal/pipeline"
	"call-coach-go/internal/provider"
	"call-coach-go/internal/store"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "call-coach-go").Info("starting service")

	cfg := config.Load()

	st, err := store.Open(store.Options{Dir: cfg.DataDir})
	if err != nil {
		log.WithError(err).Fatal("failed to open data store")
	}
	defer st.Close()

	hub := events.NewHub()
	gw := provider.FromEnv(cfg, log)
	log.WithField("provider", gw.Name()).Info("ai provider selected")

	runner := pipeline.NewRunner(st, hub, gw, cfg, log)
	server := api.NewServer(cfg, log, st, runner, hub)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server terminated")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server shutdown error")
	}
	runner.Wait()
}
