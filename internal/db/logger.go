package db

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Logger пишет SQL-трассировку gorm в logrus: ошибки — error,
// медленные запросы — warn, остальное — trace.
type Logger struct {
	log           *logrus.Logger
	slowThreshold time.Duration
}

func NewLogger(log *logrus.Logger, slow time.Duration) *Logger {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Logger{log: log, slowThreshold: slow}
}

// LogMode уровень определяется самим logrus.
func (l *Logger) LogMode(gormlogger.LogLevel) gormlogger.Interface { return l }

func (l *Logger) Info(_ context.Context, msg string, args ...any) {
	l.log.Infof(msg, args...)
}

func (l *Logger) Warn(_ context.Context, msg string, args ...any) {
	l.log.Warnf(msg, args...)
}

func (l *Logger) Error(_ context.Context, msg string, args ...any) {
	l.log.Errorf(msg, args...)
}

func (l *Logger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	dur := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.log.WithError(err).WithFields(logrus.Fields{"sql": sql, "rows": rows, "dur": dur}).Error("sql")
	case l.slowThreshold > 0 && dur > l.slowThreshold:
		sql, rows := fc()
		l.log.WithFields(logrus.Fields{"sql": sql, "rows": rows, "dur": dur}).Warn("slow sql")
	case l.log.IsLevelEnabled(logrus.TraceLevel):
		sql, rows := fc()
		l.log.WithFields(logrus.Fields{"sql": sql, "rows": rows, "dur": dur}).Trace("sql")
	}
}
