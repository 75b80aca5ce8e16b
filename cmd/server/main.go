package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

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

// Version information (set by GoReleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	var showVersion = flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("world-of-asr %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	log.Println("starting up...")

	cfg := config.Load()

	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting job service", "version", version, "commit", commit)

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

	srv := &http.Server{
		Addr:    cfg.Host + ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Startup("listen", fmt.Sprintf("listening on http://%s:%s", cfg.Host, cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("server exited")
}
