package logging

import (
	"github.com/Gobusters/ectologger"
	"go.uber.org/zap"
)

// NewLogger builds the service logger. Log entries are sunk through zap so
// output is structured JSON and plays nicely with the rest of the zap
// ecosystem (sampling, encoders, log shipping).
func NewLogger(env string) (ectologger.Logger, func() error, error) {
	var zlog *zap.Logger
	var err error
	if env == "local" || env == "development" {
		zlog, err = zap.NewDevelopment()
	} else {
		zlog, err = zap.NewProduction()
	}
	if err != nil {
		return nil, nil, err
	}

	logger := ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		zlog.Info("log", zap.Any("entry", msg))
	})

	return logger, zlog.Sync, nil
}

// NewNopLogger returns a logger that discards everything. Test helper.
func NewNopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}
