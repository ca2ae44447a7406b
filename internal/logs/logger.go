package logs

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Options — параметры инициализации логгера.
type Options struct {
	Level  string    // trace|debug|info|warning|error|fatal
	Format string    // text|json
	File   string    // путь/префикс лог-файла; если пусто — только Output
	Output io.Writer // по умолчанию os.Stderr (stdout занят выводом команд)
}

// New собирает отдельный экземпляр логгера. Глобального логгера нет:
// экземпляр передаётся в каждый клиент явно.
func New(opts Options) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetLevel(ParseLevel(opts.Level))

	// формат
	if opts.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	// вывод
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.File != "" {
		currentTime := time.Now().Format("2006-01-02_15-04-05")
		logFileName := fmt.Sprintf("%s_%s.log", opts.File, currentTime)
		file, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", logFileName, err)
		}
		out = io.MultiWriter(file, out)
	}
	l.SetOutput(out)

	return l, nil
}

// ParseLevel переводит строку конфига в уровень logrus; неизвестное — info.
func ParseLevel(s string) logrus.Level {
	switch s {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warning", "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

// Discard — логгер для тестов и тихих режимов.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
