package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vibast-solutions/ms-go-bounces/app/queue"
	"github.com/vibast-solutions/ms-go-bounces/config"
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Consume queued messages",
	Long:  "Consume queued messages from Redis streams.",
}

// init registers consume subcommands.
func init() {
	consumeCmd.AddCommand(consumeBouncesCmd)
	rootCmd.AddCommand(consumeCmd)
}

var consumeBouncesCmd = &cobra.Command{
	Use:   "bounces [consumer_name]",
	Short: "Start the bounce queue consumer",
	Long:  "Start a worker that reads submitted bounces from the Redis stream, parses them and stores the delivery records.",
	Args:  cobra.ExactArgs(1),
	Run:   runConsumeBounces,
}

// runConsumeBounces starts the bounce queue consumer worker.
func runConsumeBounces(_ *cobra.Command, args []string) {
	consumerName := args[0]

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := openMySQL(cfg)
	if err != nil {
		logrus.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	rdb, err := openRedis(cfg)
	if err != nil {
		logrus.Fatalf("Failed to open redis: %v", err)
	}
	defer rdb.Close()

	bounceService, err := buildBounceService(cfg, db, rdb)
	if err != nil {
		logrus.Fatalf("Failed to build bounce service: %v", err)
	}

	consumer := queue.NewBounceConsumer(rdb, bounceService, consumerName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logrus.Info("Received shutdown signal, stopping consumer...")
		cancel()
	}()

	if err := consumer.Run(ctx); err != nil {
		logrus.Fatalf("Consumer error: %v", err)
	}

	logrus.Info("Consumer stopped")
}
