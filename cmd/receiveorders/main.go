package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ordersim/internal/app"
	"ordersim/internal/config"
	"ordersim/internal/receiver"
	"ordersim/internal/transport"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(app.ExitCode(err))
	}
}

func newCommand() *cobra.Command {
	var (
		flags         app.Flags
		consumerGroup string
		maxEvents     int
		storeIDs      []string
		startPosition string
	)

	cmd := &cobra.Command{
		Use:   "receiveorders",
		Short: "Receive and print retail order events from an Event Hub",
		Long: `receiveorders subscribes to the order stream and prints every order,
optionally only those from the given stores. The connection string comes
from --connection-string, then EVENTHUB_RECEIVE_CONNECTION_STRING, then
EVENTHUB_CONNECTION_STRING; a local .env file fills in variables that are
not already set. Nothing is checkpointed.

Examples:
  receiveorders --store-id STORE-NY-001 --max-events 5
  receiveorders --start-position earliest --consumer-group analytics`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, ok := transport.ParseStartPosition(startPosition)
			if !ok {
				return app.ConfigFailure(fmt.Errorf("unknown start position %q (want latest or earliest)", startPosition))
			}
			if maxEvents < 0 {
				return app.ConfigFailure(fmt.Errorf("--max-events must be >= 0, got %d", maxEvents))
			}
			return run(cmd.Context(), flags, consumerGroup, start, receiver.Options{
				MaxEvents: maxEvents,
				StoreIDs:  storeIDs,
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.ConnectionString, "connection-string", "",
		"Event Hub connection string (default: EVENTHUB_RECEIVE_CONNECTION_STRING or EVENTHUB_CONNECTION_STRING)")
	f.StringVar(&flags.EventHub, "event-hub", "",
		"Event Hub (entity path) name (default: EntityPath from the connection string)")
	f.StringVar(&consumerGroup, "consumer-group", "",
		"Consumer group to receive with (default: EVENTHUB_CONSUMER_GROUP or $Default)")
	f.IntVar(&maxEvents, "max-events", 0, "Maximum events to print before exiting; 0 runs until interrupted")
	f.StringArrayVar(&storeIDs, "store-id", nil, "Only print orders from this store; repeat for several stores")
	f.StringVar(&startPosition, "start-position", string(transport.StartLatest), "latest or earliest")
	f.StringVar(&flags.Transport, "transport", "", "amqp or kafka (default: ORDERSIM_TRANSPORT or amqp)")
	f.StringVar(&flags.KafkaBrokers, "kafka-brokers", "",
		"Comma-separated plain Kafka brokers; overrides the Event Hubs Kafka endpoint")
	f.StringVar(&flags.EnvFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	return cmd
}

func run(ctx context.Context, flags app.Flags, consumerGroup string, start transport.StartPosition, opts receiver.Options) error {
	env, err := app.Prepare("receiveorders", flags, config.RoleReceive)
	if err != nil {
		return err
	}
	if consumerGroup == "" {
		consumerGroup = env.Settings.ConsumerGroup
	}
	env.ServeMetrics(ctx)

	stream, err := env.NewStream(ctx, flags.KafkaBrokers, consumerGroup, start)
	if err != nil {
		env.Shutdown(nil)
		return err
	}
	defer env.Shutdown(stream)

	r, err := receiver.New(stream, opts, os.Stdout, env.Log, env.Metrics)
	if err != nil {
		return app.ConfigFailure(err)
	}
	if _, err := r.Run(ctx); err != nil {
		return app.RuntimeFailure(fmt.Errorf("failed to receive events: %w", err))
	}
	return nil
}
