package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/imyashkale/mcpdashboard/internal/config"
	"github.com/imyashkale/mcpdashboard/internal/database"
	"github.com/imyashkale/mcpdashboard/internal/gateway"
	"github.com/imyashkale/mcpdashboard/internal/handlers"
	"github.com/imyashkale/mcpdashboard/internal/logger"
	"github.com/imyashkale/mcpdashboard/internal/middleware"
	"github.com/imyashkale/mcpdashboard/internal/queue"
	"github.com/imyashkale/mcpdashboard/internal/repository"
	"github.com/imyashkale/mcpdashboard/internal/router"
	"github.com/imyashkale/mcpdashboard/internal/services"
	"github.com/imyashkale/mcpdashboard/internal/store"
)

func main() {

	ctx := context.Background()

	// Load application configuration
	cfg := config.New()
	logger.Init(cfg.LogLevel)
	logger.WithField("backend", cfg.BackendAPIURL).Info("Configuration loaded successfully")

	// Gateway to the MCP backend. Calls are bounded only by their context.
	gw := gateway.NewClient(cfg.BackendAPIURL, nil)

	// Session state
	st := store.New(time.Now())

	// Optional ECR image verification for docker servers
	var verifier services.ImageVerifier
	if cfg.ECREnabled() {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Fatalf("Failed to load AWS configuration: %v", err)
		}
		verifier = services.NewECRService(awsCfg, cfg.AWSAccountID)
		logger.WithField("account_id", cfg.AWSAccountID).Info("ECR image verification enabled")
	}

	dashboard := services.NewDashboardService(st, gw, verifier)

	// Server catalog: env presets, then the YAML file, then the registry table
	presets := repository.NewStaticCatalog(cfg.PresetServers)
	sources := []repository.CatalogRepository{presets}
	startup := []repository.CatalogRepository{presets}
	if cfg.ServersFile != "" {
		file := repository.NewFileCatalog(cfg.ServersFile)
		sources = append(sources, file)
		startup = append(startup, file)
	}
	if cfg.CatalogTableName != "" {
		dbConfig := database.NewConfig(cfg)
		logger.WithFields(map[string]interface{}{
			"table":  dbConfig.TableName,
			"region": dbConfig.Region,
		}).Info("Initializing DynamoDB catalog client")

		dbClient, err := database.NewClient(ctx, dbConfig)
		if err != nil {
			logger.Fatalf("Failed to initialize DynamoDB client: %v", err)
		}
		sources = append(sources, repository.NewDynamoCatalog(database.NewCatalogTable(dbClient, dbClient.TableName)))
	}
	catalog := repository.NewMultiCatalog(sources...)

	// Pre-populate the store with operator-configured servers
	templates, err := repository.NewMultiCatalog(startup...).List(ctx)
	if err != nil {
		logger.Warnf("Failed to load preset servers: %v", err)
	}
	added := dashboard.ImportServers(templates)
	logger.WithField("servers", len(added)).Info("Preset servers loaded")

	// Workflow queue and workers
	jobQueue := queue.NewJobQueue(cfg.WorkflowQueueSize)
	dashboard.SetJobQueue(jobQueue)

	workerPool := queue.NewWorkerPool(jobQueue, cfg.WorkflowWorkers)
	workerPool.Start(func(job *queue.WorkflowJob) error {
		return dashboard.ExecuteJob(ctx, job)
	})
	logger.WithField("workers", cfg.WorkflowWorkers).Info("Workflow workers started")

	// Optional bearer authentication
	var auth *middleware.Auth0Config
	if cfg.AuthEnabled() {
		auth = middleware.NewAuth0Config(cfg.Auth0Domain, cfg.Auth0Audience)
		logger.WithField("domain", cfg.Auth0Domain).Info("Auth0 authentication enabled")
	}

	// Setup router
	r := router.Setup(router.Handlers{
		Health:  handlers.NewHealthHandler(dashboard),
		Session: handlers.NewSessionHandler(dashboard, st),
		Servers: handlers.NewServerHandler(dashboard, jobQueue),
		Chat:    handlers.NewChatHandler(dashboard, jobQueue),
		Catalog: handlers.NewCatalogHandler(catalog),
		Remote:  handlers.NewRemoteHandler(dashboard),
	}, auth)

	// Setup graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		logger.Info("Shutting down server gracefully...")

		// Close job queue to stop accepting new workflows
		jobQueue.Close()
		logger.Info("Job queue closed, waiting for workers to finish...")

		// Wait for in-flight workflows
		workerPool.Wait()
		logger.Info("All workers stopped")

		os.Exit(0)
	}()

	// Start server
	logger.Infof("Starting server on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
