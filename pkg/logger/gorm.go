package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// maxSQLLength caps logged statements, sweep queries with large IN lists get long
const maxSQLLength = 2000

// GormLogger routes gorm output through slog
type GormLogger struct {
	LogLevel      gormlogger.LogLevel
	SlowThreshold time.Duration
	// IgnoreRecordNotFound drops gorm.ErrRecordNotFound, which lookups by id
	// return on every 404.
	IgnoreRecordNotFound bool

	log func() *slog.Logger
}

func NewGormLogger(logLevel gormlogger.LogLevel, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{
		LogLevel:             logLevel,
		SlowThreshold:        slowThreshold,
		IgnoreRecordNotFound: true,
		log:                  func() *slog.Logger { return Log },
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Info {
		l.log().InfoContext(ctx, fmt.Sprintf(msg, data...), slog.String("component", "gorm"))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Warn {
		l.log().WarnContext(ctx, fmt.Sprintf(msg, data...), slog.String("component", "gorm"))
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Error {
		l.log().ErrorContext(ctx, fmt.Sprintf(msg, data...), slog.String("component", "gorm"))
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.LogLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && !(l.IgnoreRecordNotFound && errors.Is(err, gorm.ErrRecordNotFound))
	slow := l.SlowThreshold != 0 && elapsed > l.SlowThreshold

	var level slog.Level
	var msg string
	switch {
	case failed && l.LogLevel >= gormlogger.Error:
		level, msg = slog.LevelError, "SQL error"
	case slow && l.LogLevel >= gormlogger.Warn:
		level, msg = slog.LevelWarn, "Slow SQL"
	case l.LogLevel >= gormlogger.Info:
		level, msg = slog.LevelInfo, "SQL"
	default:
		return
	}

	sql, rows := fc()
	if len(sql) > maxSQLLength {
		sql = sql[:maxSQLLength] + "..."
	}

	attrs := []slog.Attr{
		slog.String("component", "gorm"),
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}
	if failed {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.log().LogAttrs(ctx, level, msg, attrs...)
}
