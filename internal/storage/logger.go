package storage

import (
	"strings"

	"github.com/rs/zerolog"
)

// badgerLogger adapts zerolog to badger.Logger.
type badgerLogger struct {
	zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.Error().Msgf(strings.TrimSuffix(format, "\n"), args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warn().Msgf(strings.TrimSuffix(format, "\n"), args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.Info().Msgf(strings.TrimSuffix(format, "\n"), args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.Debug().Msgf(strings.TrimSuffix(format, "\n"), args...)
}
