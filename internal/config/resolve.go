package config

import (
	"fmt"
	"os"
	"strings"
)

// Role selects the role-specific connection string variable.
type Role string

const (
	RoleSend    Role = "send"
	RoleReceive Role = "receive"
)

const (
	EnvSendConnectionString    = "EVENTHUB_SEND_CONNECTION_STRING"
	EnvReceiveConnectionString = "EVENTHUB_RECEIVE_CONNECTION_STRING"
	EnvConnectionString        = "EVENTHUB_CONNECTION_STRING"
)

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ConfigError reports that no connection string was found.
type ConfigError struct {
	Checked []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing Event Hub connection string: provide --connection-string or set %s",
		strings.Join(e.Checked, " / "))
}

// Request carries the CLI-provided values; empty means not given.
type Request struct {
	ConnectionString string
	EventHub         string
	Role             Role
}

// Connection is the resolved, read-only connection configuration.
type Connection struct {
	ConnectionString string
	EventHub         string
}

// EnvVars lists the variables consulted for role, most specific first.
func EnvVars(role Role) []string {
	switch role {
	case RoleSend:
		return []string{EnvSendConnectionString, EnvConnectionString}
	case RoleReceive:
		return []string{EnvReceiveConnectionString, EnvConnectionString}
	default:
		return []string{EnvConnectionString}
	}
}

// Resolve applies CLI > role env > generic env for the connection string and
// CLI > EntityPath for the hub name. A nil lookup uses os.LookupEnv.
func Resolve(req Request, lookup LookupFunc) (Connection, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	conn := strings.TrimSpace(req.ConnectionString)
	if conn == "" {
		vars := EnvVars(req.Role)
		for _, name := range vars {
			if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
				conn = strings.TrimSpace(v)
				break
			}
		}
		if conn == "" {
			return Connection{}, &ConfigError{Checked: vars}
		}
	}

	hub := strings.TrimSpace(req.EventHub)
	if hub == "" {
		p, err := EntityPath(conn)
		if err != nil {
			return Connection{}, err
		}
		hub = p
	}
	return Connection{ConnectionString: conn, EventHub: hub}, nil
}
