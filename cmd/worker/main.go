package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/atlas-kg/atlas/internal/queue"
	"github.com/atlas-kg/atlas/internal/storage"
	"github.com/atlas-kg/atlas/internal/util"
	"github.com/atlas-kg/atlas/pkg/analysis"
	"github.com/atlas-kg/atlas/pkg/logger"
	"github.com/atlas-kg/atlas/pkg/logger/console"
	"github.com/atlas-kg/atlas/pkg/rank"
	graphdb "github.com/atlas-kg/atlas/pkg/store/pgx"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	amqp "github.com/rabbitmq/amqp091-go"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	databaseURL := util.GetEnv("DATABASE_URL")
	migrationsPath := util.GetEnvString("MIGRATIONS_PATH", "migrations")
	if err := storage.RunMigrations(databaseURL, migrationsPath); err != nil {
		logger.Fatal("Failed to run migrations", "err", err)
	}

	pgConn, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()

	graphID := util.GetEnvString("GRAPH_ID", "default")
	reader := graphdb.NewGraphDBReader(pgConn, graphID)

	analyzer, err := analysis.NewAnalyzer(analysis.NewAnalyzerParams{
		Reader: reader,
	})
	if err != nil {
		logger.Fatal("Failed to create analyzer", "err", err)
	}
	ranker, err := rank.NewRanker(rank.NewRankerParams{
		Reader: reader,
	})
	if err != nil {
		logger.Fatal("Failed to create ranker", "err", err)
	}

	conn := queue.Init()
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	queues := []string{queue.MutationQueue}
	if err := queue.SetupQueues(ch, queues); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	// Prefetch 1 so mutations apply in arrival order.
	if err := consumerCh.Qos(1, 0, true); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := consumerCh.Consume(
		queue.MutationQueue,
		"mutation_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.MutationQueue, "err", err)
	}

	logger.Info("Listening for graph mutations", "graph_id", graphID)

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("Stopping message processor")
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Info("Message channel closed")
					return
				}

				err := queue.ProcessMutationMessage(ctx, analyzer, ranker, string(msg.Body))
				if err != nil {
					logger.Error("Error processing mutation", "err", err)
					handleProcessingError(consumerCh, msg, queue.MutationQueue)
					continue
				}
				if err := msg.Ack(false); err != nil {
					logger.Error("Failed to ack message", "err", err)
				}
			}
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, exiting...")
}

func handleProcessingError(ch *amqp.Channel, msg amqp.Delivery, queueName string) {
	retries := 0
	if val, ok := msg.Headers["x-retries"]; ok {
		if v, ok := val.(int32); ok {
			retries = int(v)
		}
	}

	// After 10 attempts the message goes to the dead-letter queue.
	if retries >= 10 {
		dlqName := queueName + "_dlq"
		logger.Info("Sending message to DLQ", "dlq", dlqName)
		pubErr := ch.Publish(
			"",
			dlqName,
			false,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        msg.Body,
				Headers:     msg.Headers,
			},
		)
		if pubErr != nil {
			logger.Error("Failed to publish to DLQ", "dlq", dlqName, "err", pubErr)
			msg.Nack(false, true)
			return
		}
		msg.Ack(false)
		return
	}

	retryName := queueName + "_retry"
	headers := msg.Headers
	if headers == nil {
		headers = amqp.Table{}
	}
	headers["x-retries"] = retries + 1

	pubErr := ch.Publish(
		"",
		retryName,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        msg.Body,
			Headers:     headers,
		},
	)
	if pubErr != nil {
		logger.Error("Failed to publish to retry queue", "retry_queue", retryName, "err", pubErr)
		msg.Nack(false, true)
		return
	}
	msg.Ack(false)
}
