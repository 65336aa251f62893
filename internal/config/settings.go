package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Settings holds process-wide knobs read from the environment.
type Settings struct {
	LogLevel      string `env:"LOG_LEVEL"               env-default:"info"     validate:"oneof=debug info warn error"`
	LogFile       string `env:"LOG_FILE"`
	MetricsAddr   string `env:"METRICS_ADDR"`
	ConsumerGroup string `env:"EVENTHUB_CONSUMER_GROUP" env-default:"$Default" validate:"required"`
	Transport     string `env:"ORDERSIM_TRANSPORT"      env-default:"amqp"     validate:"oneof=amqp kafka"`
}

// LoadDotenv loads key=value pairs from path into the process environment.
// Variables that are already set win over the file. A missing file is fine.
func LoadDotenv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// LoadSettings reads Settings from the environment.
func LoadSettings() (Settings, error) {
	const op = "config.LoadSettings"

	var s Settings
	if err := cleanenv.ReadEnv(&s); err != nil {
		return Settings{}, fmt.Errorf("%s: read env: %w", op, err)
	}
	if err := validator.New().Struct(s); err != nil {
		return Settings{}, fmt.Errorf("%s: validate: %w", op, err)
	}
	return s, nil
}
