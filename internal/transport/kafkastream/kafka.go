// Package kafkastream publishes and consumes order events through the Kafka
// protocol, either against the Event Hubs Kafka endpoint or a plain broker.
package kafkastream

import (
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"

	"ordersim/internal/config"
)

// connectionStringUser is the fixed SASL user name Event Hubs expects when
// the password is a connection string.
const connectionStringUser = "$ConnectionString"

// Endpoint describes where and how to connect.
type Endpoint struct {
	Brokers []string
	TLS     *tls.Config
	SASL    sasl.Mechanism
}

// EndpointFor builds an Endpoint. A non-empty brokers list is used as-is with
// no TLS or SASL; otherwise the Event Hubs namespace from connStr is used.
func EndpointFor(connStr, brokers string) (Endpoint, error) {
	if list := SplitBrokers(brokers); len(list) > 0 {
		return Endpoint{Brokers: list}, nil
	}
	broker, err := config.KafkaBroker(connStr)
	if err != nil {
		return Endpoint{}, fmt.Errorf("kafka endpoint: %w", err)
	}
	return Endpoint{
		Brokers: []string{broker},
		TLS:     &tls.Config{MinVersion: tls.VersionTLS12},
		SASL:    plain.Mechanism{Username: connectionStringUser, Password: connStr},
	}, nil
}

// SplitBrokers splits a comma-separated list of host:port.
func SplitBrokers(bootstrap string) []string {
	var brokers []string
	for _, a := range strings.Split(bootstrap, ",") {
		a = strings.TrimSpace(a)
		if a != "" {
			brokers = append(brokers, a)
		}
	}
	return brokers
}

func (e Endpoint) transport() *kafka.Transport {
	return &kafka.Transport{TLS: e.TLS, SASL: e.SASL}
}

func (e Endpoint) dialer() *kafka.Dialer {
	return &kafka.Dialer{
		Timeout:       10 * time.Second,
		DualStack:     true,
		TLS:           e.TLS,
		SASLMechanism: e.SASL,
	}
}
