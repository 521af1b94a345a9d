package log

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects how the service logs. The zero value gives an info-level
// console logger.
type Options struct {
	Level      string
	Production bool
	Service    string
}

func config(o Options) (zap.Config, error) {
	var cfg zap.Config
	if o.Production {
		cfg = zap.NewProductionConfig()
		cfg.Sampling = nil
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if o.Level != "" {
		if err := level.UnmarshalText([]byte(o.Level)); err != nil {
			return zap.Config{}, fmt.Errorf("bad LOG_LEVEL %q: %w", o.Level, err)
		}
	}
	cfg.Level = level

	if o.Service != "" {
		cfg.InitialFields = map[string]any{"service": o.Service}
	}
	return cfg, nil
}

func New(o Options) (*zap.Logger, error) {
	cfg, err := config(o)
	if err != nil {
		return nil, err
	}
	return cfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}

// Must is New for process start-up. An unparsable level falls back to info
// and is reported through the returned logger.
func Must(o Options) *zap.Logger {
	l, err := New(o)
	if err == nil {
		return l
	}
	bad := o.Level
	o.Level = ""
	if l, err = New(o); err != nil {
		panic(err)
	}
	l.Warn("unknown log level, using info", zap.String("level", bad))
	return l
}
