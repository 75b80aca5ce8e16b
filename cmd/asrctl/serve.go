package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/indra622/world-of-asr/internal/api"
	"github.com/indra622/world-of-asr/internal/config"
	"github.com/indra622/world-of-asr/internal/database"
	"github.com/indra622/world-of-asr/internal/diarization"
	"github.com/indra622/world-of-asr/internal/jobmanager"
	"github.com/indra622/world-of-asr/internal/pipeline"
	"github.com/indra622/world-of-asr/internal/queue"
	"github.com/indra622/world-of-asr/internal/recognizer/adapters"
	"github.com/indra622/world-of-asr/internal/recognizer/registry"
	"github.com/indra622/world-of-asr/internal/repository"
	"github.com/indra622/world-of-asr/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the job service HTTP server in the foreground",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := config.Load()

	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting job service")

	if err := database.Initialize(cfg.DatabasePath); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()

	jobs := repository.NewJobRepository(database.DB)
	files := repository.NewUploadedFileRepository(database.DB)
	results := repository.NewResultRepository(database.DB)

	reg := registry.New(adapters.Factories(cfg))
	diarizer := diarization.New(nil)
	proc := pipeline.New(jobs, results, reg, diarizer, cfg)

	taskQueue := queue.NewTaskQueue(cfg.MaxConcurrentJobs, true, proc, jobs)
	taskQueue.Start()
	defer taskQueue.Stop()

	manager := jobmanager.New(jobs, files, results, taskQueue)
	handler := api.NewHandler(cfg, database.DB, manager, files)

	if cfg.Host != "localhost" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.SetupRoutes(handler, cfg)

	srv := &http.Server{Addr: cfg.Host + ":" + cfg.Port, Handler: router}

	go func() {
		fmt.Printf("listening on http://%s:%s\n", cfg.Host, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
}
