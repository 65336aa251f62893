package config

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	keyEndpoint   = "endpoint"
	keyEntityPath = "entitypath"

	// kafkaPort is the Event Hubs Kafka endpoint port.
	kafkaPort = "9093"
)

// ParseError reports a connection string that lacks a required segment.
type ParseError struct {
	Segment string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("connection string does not contain an %s segment", e.Segment)
}

// ParseConnectionString splits "Key=Value;Key=Value" into a map keyed by the
// lower-cased key. Values keep any '=' after the first one.
func ParseConnectionString(s string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out
}

// EntityPath returns the EntityPath segment of a connection string.
func EntityPath(connStr string) (string, error) {
	if v := ParseConnectionString(connStr)[keyEntityPath]; v != "" {
		return v, nil
	}
	return "", &ParseError{Segment: "EntityPath"}
}

// KafkaBroker derives host:9093 from the Endpoint segment.
func KafkaBroker(connStr string) (string, error) {
	ep := ParseConnectionString(connStr)[keyEndpoint]
	if ep == "" {
		return "", &ParseError{Segment: "Endpoint"}
	}
	u, err := url.Parse(ep)
	if err != nil || u.Hostname() == "" {
		return "", fmt.Errorf("endpoint %q: %w", ep, &ParseError{Segment: "Endpoint"})
	}
	return u.Hostname() + ":" + kafkaPort, nil
}
