package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"solarcalc/internal/application/port/output"
)

var _ output.LoggerPort = (*Adapter)(nil)

// Adapter backs the logger port with a zap sugared logger: console encoding
// in dev, JSON in prod.
type Adapter struct {
	s *zap.SugaredLogger
}

func New(env, level string) (*Adapter, error) {
	var cfg zap.Config
	if env == "prod" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(parsed)
	}

	log, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &Adapter{s: log.Sugar()}, nil
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() *Adapter {
	return &Adapter{s: zap.NewNop().Sugar()}
}

func (a *Adapter) Debug(msg string, args ...any) { a.s.Debugw(msg, args...) }
func (a *Adapter) Info(msg string, args ...any)  { a.s.Infow(msg, args...) }
func (a *Adapter) Warn(msg string, args ...any)  { a.s.Warnw(msg, args...) }
func (a *Adapter) Error(msg string, args ...any) { a.s.Errorw(msg, args...) }

func (a *Adapter) With(args ...any) output.LoggerPort {
	return &Adapter{s: a.s.With(args...)}
}

func (a *Adapter) Close() error {
	return a.s.Sync()
}
