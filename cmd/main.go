package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/Leomister1233/Backend/configs"
	"github.com/Leomister1233/Backend/internal/daemon"
	"github.com/Leomister1233/Backend/internal/db"
	"github.com/Leomister1233/Backend/internal/handlers"
	"github.com/Leomister1233/Backend/internal/logger"
	"github.com/Leomister1233/Backend/internal/middleware"
	"github.com/Leomister1233/Backend/internal/utils"
)

func main() {
	cfg := configs.LoadConfig()
	log := logger.New().WithLevel(cfg.LogLevel).Pretty(cfg.LogPretty).Make()

	ctx := context.Background()
	client, err := db.Connect(ctx, cfg.MongoURI, cfg.StoreTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to MongoDB")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()
	log.Info().Str("db", cfg.DBName).Msg("connected to MongoDB")

	colls := db.GetCollections(client, cfg.DBName)
	if err := db.EnsureIndexes(ctx, colls); err != nil {
		log.Fatal().Err(err).Msg("could not create indexes")
	}
	ids := db.NewSequences(colls)
	if err := db.SeedAll(ctx, colls, ids); err != nil {
		log.Fatal().Err(err).Msg("could not seed id counters")
	}

	auditLogger := utils.AuditLogger{Collection: colls.AuditLogs, Logger: log}

	chain := []mux.MiddlewareFunc{
		middleware.RequestID,
		middleware.AccessLog(log),
		middleware.Recover(log),
		middleware.JSONMiddleware,
	}
	r := mux.NewRouter()
	r.Use(chain...)
	handlers.RootRoutes(r, chain...)

	api := r.PathPrefix("/api").Subrouter()
	handlers.NewBookHandler(colls, ids.Books, auditLogger, log).Routes(api.PathPrefix("/books").Subrouter())
	handlers.NewCommentHandler(colls, ids.Comments, auditLogger, log).Routes(api.PathPrefix("/comments").Subrouter())
	handlers.NewLivrariaHandler(colls, auditLogger, log).Routes(api.PathPrefix("/livrarias").Subrouter())
	handlers.NewUserHandler(colls, ids.Users, auditLogger, log).Routes(api.PathPrefix("/users").Subrouter())

	var exporter *daemon.LogExporter
	if cfg.AuditExportSchedule != "" {
		exporter = daemon.NewLogExporter(colls.AuditLogs, log)
		if err := exporter.Start(cfg.AuditExportSchedule); err != nil {
			log.Fatal().Err(err).Msg("could not start audit exporter")
		}
	}

	var server = http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if exporter != nil {
		exporter.Stop()
	}
	log.Info().Msg("server shut down")
}
