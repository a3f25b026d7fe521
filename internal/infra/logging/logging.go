package logging

import (
	"context"
	"os"
	"strings"
	"time"

	"clinic-credit-service/internal/config"

	"github.com/rs/zerolog"
)

// New creates a zerolog logger configured from config.
// Supports "trace" | "debug" | "info" | "warn" | "error" levels
// and "json" | "console" formats. Sampling can be enabled to reduce noise in prod.
func New(cfg config.LogConfig, dev bool) *zerolog.Logger {
	level, _ := zerolog.ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	var base zerolog.Logger
	if strings.ToLower(cfg.Format) == "console" || dev {
		out := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		base = zerolog.New(out).With().Timestamp().Logger()
	} else {
		base = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	if cfg.Sampling && !dev {
		// Keep first 100, then 1 every 100 thereafter.
		sampled := base.Sample(&zerolog.BasicSampler{N: 100})
		return &sampled
	}
	return &base
}

type ctxKey string

const (
	ctxRequestID ctxKey = "request_id"
	ctxPatientID ctxKey = "patient_id"
	ctxClinicID  ctxKey = "clinic_id"
)

// With attaches request-scoped fields carried in ctx to the logger.
func With(ctx context.Context, base *zerolog.Logger) *zerolog.Logger {
	l := base.With()
	if v := ctx.Value(ctxRequestID); v != nil {
		l = l.Str("request_id", v.(string))
	}
	if v := ctx.Value(ctxPatientID); v != nil {
		l = l.Str("patient_id", v.(string))
	}
	if v := ctx.Value(ctxClinicID); v != nil {
		l = l.Str("clinic_id", v.(string))
	}
	logger := l.Logger()
	return &logger
}

// Helpers to put IDs into context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxRequestID, id)
}
func WithPatientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxPatientID, id)
}
func WithClinicID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxClinicID, id)
}
