package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ganshmuel/platform/internal/dbutil"
	"ganshmuel/platform/internal/logging"
	shiftcfg "ganshmuel/platform/internal/shift/config"
	"ganshmuel/platform/internal/shift/httpapi"
)

func main() {
	cfg := shiftcfg.Load()
	log := logging.New("shift-service", cfg.LogLevel)

	if err := dbutil.Migrate(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	ctx := context.Background()
	pool, err := dbutil.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to database")
	}
	defer pool.Close()

	handler := httpapi.NewRouter(httpapi.Deps{DB: pool, Config: cfg, Logger: log})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("shift-service listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
