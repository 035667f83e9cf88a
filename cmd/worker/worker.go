package main

import (
	"context"
	"log"
	"math/rand"
	"time"

	"plagiarism-check-platform/internal/analysis"
	"plagiarism-check-platform/internal/config"
	"plagiarism-check-platform/internal/logger"
	"plagiarism-check-platform/internal/queue"
	"plagiarism-check-platform/internal/store"
	"plagiarism-check-platform/internal/telemetry"
	"plagiarism-check-platform/services"

	"github.com/hibiken/asynq"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to init metrics:", err)
	}

	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()

	asynqClient := asynq.NewClient(config.AsynqRedisOpt(cfg))
	defer asynqClient.Close()

	db := mongoClient.Database(cfg.DBName)
	userStore := store.NewUserStore(db)
	documentStore := store.NewDocumentStore(db)
	checkStore := store.NewCheckStore(db)

	seed := cfg.AiDetectSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	detector := analysis.NewAiDetector(rand.New(rand.NewSource(seed)))

	clock := services.NewRealClock()
	checkService := services.NewCheckService(
		documentStore,
		userStore,
		checkStore,
		queue.NewClient(asynqClient),
		detector,
		clock,
		cfg.DailyCheckLimit,
	)

	// Watchdog fails checks stuck in Processing, covering worker
	// crashes after the retry budget is spent.
	if cfg.WatchdogEnabled {
		watchdog := services.NewWatchdog(checkStore, clock,
			cfg.WatchdogCron, time.Duration(cfg.CheckStuckAfter)*time.Minute)
		if err := watchdog.Start(); err != nil {
			log.Fatal("Failed to start watchdog:", err)
		}
		defer watchdog.Stop()
	}

	server := asynq.NewServer(
		config.AsynqRedisOpt(cfg),
		asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	processor := queue.NewTaskProcessor(checkService, metrics)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskProcessCheck, processor.ProcessCheck)

	logger.Info("worker starting",
		"concurrency", cfg.WorkerConcurrency,
		"redis", cfg.RedisURL)

	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}
