package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/ogurasousui/employee-registry/internal/platform/config"
	"github.com/rs/zerolog"
)

const serviceName = "employee-registry"

// New は設定に従って zerolog.Logger を構築します。
func New(cfg config.LogConfig, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("logging: parse level %q: %w", cfg.Level, err)
	}

	out := w
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger(), nil
}
