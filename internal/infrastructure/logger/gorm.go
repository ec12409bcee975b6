package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// maxStatementLength caps the SQL text attached to a log line
const maxStatementLength = 2048

// GormConfig selects what the GORM logger emits
type GormConfig struct {
	// Level is one of silent, error, warn or info
	Level string
	// SlowThreshold marks statements slower than this as warnings. Zero
	// disables the check.
	SlowThreshold time.Duration
}

// GormLogger writes GORM output through zap. Every line carries the request,
// trace, draft and doc type fields of the calling context. Lookups that find
// no row are expected for the job history and never logged.
type GormLogger struct {
	logger *zap.Logger
	level  gormlogger.LogLevel
	slow   time.Duration
}

// NewGormLogger creates a GORM logger backed by l
func NewGormLogger(l *zap.Logger, cfg GormConfig) *GormLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &GormLogger{
		logger: l.Named("gorm"),
		level:  ParseGormLevel(cfg.Level),
		slow:   cfg.SlowThreshold,
	}
}

// LogMode implements gormlogger.Interface
func (g *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

// Info implements gormlogger.Interface
func (g *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	g.message(ctx, gormlogger.Info, msg, data)
}

// Warn implements gormlogger.Interface
func (g *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	g.message(ctx, gormlogger.Warn, msg, data)
}

// Error implements gormlogger.Interface
func (g *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	g.message(ctx, gormlogger.Error, msg, data)
}

func (g *GormLogger) message(ctx context.Context, level gormlogger.LogLevel, msg string, data []any) {
	if g.level < level {
		return
	}
	log := Enrich(ctx, g.logger)
	text := fmt.Sprintf(msg, data...)
	switch level {
	case gormlogger.Error:
		log.Error(text)
	case gormlogger.Warn:
		log.Warn(text)
	default:
		log.Info(text)
	}
}

// Trace implements gormlogger.Interface. Failed statements log at error,
// slow ones at warn and the rest at debug when the level is info.
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	if err != nil && errors.Is(err, gormlogger.ErrRecordNotFound) {
		err = nil
	}

	elapsed := time.Since(begin)
	isSlow := g.slow > 0 && elapsed > g.slow

	switch {
	case err != nil && g.level >= gormlogger.Error:
	case isSlow && g.level >= gormlogger.Warn:
	case g.level >= gormlogger.Info:
	default:
		return
	}

	sql, rows := fc()
	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", truncateStatement(sql)),
	}
	log := Enrich(ctx, g.logger)

	switch {
	case err != nil:
		log.Error("Query failed", append(fields, zap.Error(err))...)
	case isSlow:
		log.Warn("Slow query", append(fields, zap.Duration("threshold", g.slow))...)
	default:
		log.Debug("Query", fields...)
	}
}

func truncateStatement(sql string) string {
	sql = strings.TrimSpace(sql)
	if len(sql) <= maxStatementLength {
		return sql
	}
	return sql[:maxStatementLength] + "..."
}

// ParseGormLevel maps a level name to a GORM log level. Unknown names and
// debug fall back to warn and info respectively.
func ParseGormLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
