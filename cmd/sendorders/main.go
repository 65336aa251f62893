package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ordersim/internal/app"
	"ordersim/internal/config"
	"ordersim/internal/generator"
	"ordersim/internal/sender"
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
		flags    app.Flags
		minDelay float64
		maxDelay float64
		count    int
	)

	cmd := &cobra.Command{
		Use:   "sendorders",
		Short: "Send simulated retail orders to an Event Hub",
		Long: `sendorders generates random retail orders and publishes each one as a
JSON event. The connection string comes from --connection-string, then
EVENTHUB_SEND_CONNECTION_STRING, then EVENTHUB_CONNECTION_STRING; a local
.env file fills in variables that are not already set.

Examples:
  sendorders --count 10 --min-delay 0.2 --max-delay 1.0
  sendorders --transport kafka --kafka-brokers localhost:9092 --event-hub orders`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := sender.Options{
				Count:    count,
				MinDelay: seconds(minDelay),
				MaxDelay: seconds(maxDelay),
			}
			if err := opts.Validate(); err != nil {
				return app.ConfigFailure(err)
			}
			return run(cmd.Context(), flags, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.ConnectionString, "connection-string", "",
		"Event Hub connection string (default: EVENTHUB_SEND_CONNECTION_STRING or EVENTHUB_CONNECTION_STRING)")
	f.StringVar(&flags.EventHub, "event-hub", "",
		"Event Hub (entity path) name (default: EntityPath from the connection string)")
	f.Float64Var(&minDelay, "min-delay", 0.5, "Minimum delay between events in seconds")
	f.Float64Var(&maxDelay, "max-delay", 2.5, "Maximum delay between events in seconds")
	f.IntVar(&count, "count", 0, "Number of events to send; 0 runs until interrupted")
	f.StringVar(&flags.Transport, "transport", "", "amqp or kafka (default: ORDERSIM_TRANSPORT or amqp)")
	f.StringVar(&flags.KafkaBrokers, "kafka-brokers", "",
		"Comma-separated plain Kafka brokers; overrides the Event Hubs Kafka endpoint")
	f.StringVar(&flags.EnvFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	return cmd
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

func run(ctx context.Context, flags app.Flags, opts sender.Options) error {
	env, err := app.Prepare("sendorders", flags, config.RoleSend)
	if err != nil {
		return err
	}
	env.ServeMetrics(ctx)

	pub, err := env.NewPublisher(flags.KafkaBrokers)
	if err != nil {
		env.Shutdown(nil)
		return err
	}
	defer env.Shutdown(pub)

	s, err := sender.New(pub, generator.New(0), opts, env.Log, env.Metrics)
	if err != nil {
		return app.ConfigFailure(err)
	}
	if _, err := s.Run(ctx); err != nil {
		return app.RuntimeFailure(fmt.Errorf("failed to send events: %w", err))
	}
	return nil
}
