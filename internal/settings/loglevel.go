package settings

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"repo-manager/internal/domain"
)

// LogLevel порог логирования в том виде, в каком он лежит в general.toml.
type LogLevel string

const (
	LevelTrace LogLevel = "Trace"
	LevelDebug LogLevel = "Debug"
	LevelInfo  LogLevel = "Info"
	LevelWarn  LogLevel = "Warn"
	LevelError LogLevel = "Error"

	// DefaultLogLevel когда logging.max_level не задан.
	DefaultLogLevel = LevelWarn
)

var logLevels = []LogLevel{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError}

// ParseLogLevel регистр не важен: "error", "Error" и "ERROR" одно и то же.
func ParseLogLevel(value string) (LogLevel, error) {
	for _, level := range logLevels {
		if strings.EqualFold(value, string(level)) {
			return level, nil
		}
	}
	return "", fmt.Errorf("log level %q: %w", value, domain.ErrInvalidLogLevel)
}

func (l LogLevel) Logrus() logrus.Level {
	switch l {
	case LevelTrace:
		return logrus.TraceLevel
	case LevelDebug:
		return logrus.DebugLevel
	case LevelInfo:
		return logrus.InfoLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.WarnLevel
	}
}

func (l LogLevel) MarshalText() ([]byte, error) {
	return []byte(l), nil
}

func (l *LogLevel) UnmarshalText(text []byte) error {
	level, err := ParseLogLevel(string(text))
	if err != nil {
		return err
	}
	*l = level
	return nil
}
