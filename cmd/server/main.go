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

	"repo_agent/internal/api"
	"repo_agent/internal/app/pipeline"
	"repo_agent/internal/app/service"
	"repo_agent/internal/app/worker"
	"repo_agent/internal/domain/repository"
	"repo_agent/internal/platform/config"
	"repo_agent/internal/platform/githost"
	"repo_agent/internal/platform/vcs"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize Job Store
	store := repository.NewJobStore(context.Background(), repository.StoreOptions{
		Backend:         config.AppConfig.StoreBackend,
		FilePath:        config.AppConfig.StoreFilePath,
		SnapshotKey:     config.AppConfig.StoreSnapshotKey,
		RedisAddr:       config.AppConfig.RedisAddr,
		RedisPassword:   config.AppConfig.RedisPassword,
		RedisDB:         config.AppConfig.RedisDB,
		PostgresConnStr: config.AppConfig.DBConnStr,
	})
	fmt.Printf("Job store initialized (%s backend requested).\n", config.AppConfig.StoreBackend)

	// 3. Initialize Dispatcher (worker pool, as goroutines)
	dispatcher := worker.NewDispatcher(config.AppConfig.WorkerCount, 256)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	dispatcher.Start(workerCtx)
	fmt.Println("Dispatcher started.")

	// 4. Initialize Pipeline & Services
	gitClient := vcs.NewGitClient()
	hostClient := githost.NewGitHubClient(config.AppConfig.GitHubAPIBase)
	changePipeline := pipeline.New(gitClient, hostClient, pipeline.Options{
		Token:             config.AppConfig.GitHubToken,
		WorkspaceRoot:     config.AppConfig.WorkspaceRoot,
		BranchPrefix:      config.AppConfig.BranchPrefix,
		CommitterName:     config.AppConfig.CommitterName,
		CommitterEmail:    config.AppConfig.CommitterEmail,
		PRTitleMaxLen:     config.AppConfig.PRTitleMaxLen,
		CleanupWorkspaces: config.AppConfig.CleanupWorkspaces,
	})
	jobService := service.NewJobService(store, dispatcher, changePipeline)

	// 5. Initialize Router & HTTP Server
	router := api.NewRouter(jobService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 6. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")
	workerCancel() // Signal workers to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	dispatcher.Wait()
	log.Println("Server and workers stopped gracefully.")
}
