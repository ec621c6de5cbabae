package logger

import "github.com/rs/zerolog/log"

// Logger routes printf-style library logs (e.g. retryablehttp) to the debug level of the global zerolog logger.
type Logger struct{}

func (*Logger) Printf(format string, v ...interface{}) {
	log.Debug().Msgf(format, v...)
}
