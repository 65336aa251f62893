// Package app wires settings, logging, metrics and transports for the
// command-line tools.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ordersim/internal/config"
	"ordersim/internal/logging"
	"ordersim/internal/metrics"
	"ordersim/internal/transport"
	"ordersim/internal/transport/eventhub"
	"ordersim/internal/transport/kafkastream"
)

const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitBadConfig = 2
)

const (
	TransportAMQP  = "amqp"
	TransportKafka = "kafka"
)

// ExitError carries the process exit code for an error.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

// ConfigFailure marks err as a configuration failure.
func ConfigFailure(err error) error { return &ExitError{Code: ExitBadConfig, Err: err} }

// RuntimeFailure marks err as a transport or I/O failure.
func RuntimeFailure(err error) error { return &ExitError{Code: ExitFailure, Err: err} }

// ExitCode maps err to a process exit code. Errors that carry no code come
// from flag parsing and count as configuration failures.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ExitBadConfig
}

// Flags are the connection flags shared by sendorders and receiveorders.
type Flags struct {
	ConnectionString string
	EventHub         string
	Transport        string
	KafkaBrokers     string
	EnvFile          string
}

// Env is everything resolved before the first network call.
type Env struct {
	Settings  config.Settings
	Log       *zap.Logger
	Metrics   *metrics.Registry
	Conn      config.Connection
	Transport string
}

// Prepare loads the dotenv file, settings and logger and resolves the
// connection. Every error it returns is a configuration failure.
func Prepare(service string, f Flags, role config.Role) (*Env, error) {
	if err := config.LoadDotenv(f.EnvFile); err != nil {
		return nil, ConfigFailure(err)
	}
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, ConfigFailure(err)
	}
	log, err := logging.New(logging.Options{Level: settings.LogLevel, File: settings.LogFile, Service: service})
	if err != nil {
		return nil, ConfigFailure(err)
	}
	log.Info("initializing", zap.String("role", string(role)))

	name := f.Transport
	if name == "" {
		name = settings.Transport
	}
	if name != TransportAMQP && name != TransportKafka {
		return nil, ConfigFailure(fmt.Errorf("unknown transport %q (want %s or %s)", name, TransportAMQP, TransportKafka))
	}

	conn, err := resolve(f, role, name)
	if err != nil {
		return nil, ConfigFailure(err)
	}
	return &Env{
		Settings:  settings,
		Log:       log,
		Metrics:   metrics.NewRegistry(),
		Conn:      conn,
		Transport: name,
	}, nil
}

// resolve lets a plain Kafka broker run without a connection string as long
// as the topic is named explicitly.
func resolve(f Flags, role config.Role, transportName string) (config.Connection, error) {
	conn, err := config.Resolve(config.Request{
		ConnectionString: f.ConnectionString,
		EventHub:         f.EventHub,
		Role:             role,
	}, nil)
	var cfgErr *config.ConfigError
	if transportName == TransportKafka && f.KafkaBrokers != "" && f.EventHub != "" && errors.As(err, &cfgErr) {
		return config.Connection{EventHub: f.EventHub}, nil
	}
	return conn, err
}

// ServeMetrics exposes the registry when METRICS_ADDR is set.
func (e *Env) ServeMetrics(ctx context.Context) {
	if e.Settings.MetricsAddr == "" {
		return
	}
	go func() {
		e.Log.Info("serving metrics", zap.String("addr", e.Settings.MetricsAddr))
		if err := e.Metrics.Serve(ctx, e.Settings.MetricsAddr); err != nil {
			e.Log.Warn("metrics server stopped", zap.Error(err))
		}
	}()
}

// NewPublisher builds the publisher for the selected transport.
func (e *Env) NewPublisher(brokers string) (transport.Publisher, error) {
	switch e.Transport {
	case TransportKafka:
		ep, err := kafkastream.EndpointFor(e.Conn.ConnectionString, brokers)
		if err != nil {
			return nil, ConfigFailure(err)
		}
		return kafkastream.NewProducer(ep, e.Conn.EventHub), nil
	default:
		p, err := eventhub.NewProducer(e.Conn.ConnectionString, e.Conn.EventHub)
		if err != nil {
			return nil, RuntimeFailure(err)
		}
		return p, nil
	}
}

// NewStream builds the subscription for the selected transport.
func (e *Env) NewStream(ctx context.Context, brokers, consumerGroup string, start transport.StartPosition) (transport.Stream, error) {
	switch e.Transport {
	case TransportKafka:
		ep, err := kafkastream.EndpointFor(e.Conn.ConnectionString, brokers)
		if err != nil {
			return nil, ConfigFailure(err)
		}
		return kafkastream.NewConsumer(ep, e.Conn.EventHub, consumerGroup, start), nil
	default:
		c, err := eventhub.NewConsumer(ctx, e.Conn.ConnectionString, e.Conn.EventHub, consumerGroup, start)
		if err != nil {
			return nil, RuntimeFailure(err)
		}
		return c, nil
	}
}

// Shutdown closes c with a bounded timeout and flushes the logger.
func (e *Env) Shutdown(c interface{ Close(context.Context) error }) {
	if c != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Close(ctx); err != nil {
			e.Log.Warn("close transport", zap.Error(err))
		}
	}
	e.Log.Info("terminated")
	_ = e.Log.Sync()
}
