// Package logging настраивает logrus и даёт живой регулятор порога логирования.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"repo-manager/internal/config"
)

const (
	formatJSON   = "json"
	outputStdout = "stdout"
	outputStderr = "stderr"
)

// Configure выставляет формат и вывод. Порог здесь не трогается - им владеет LevelController.
// Если вывод идёт в файл, возвращается его closer, иначе nil.
func Configure(logger *logrus.Logger, cfg config.LoggingConfig) (io.Closer, error) {
	if cfg.Format == formatJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	switch cfg.Output {
	case "", outputStdout:
		logger.SetOutput(os.Stdout)
	case outputStderr:
		logger.SetOutput(os.Stderr)
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log output %s: %w", cfg.Output, err)
		}
		logger.SetOutput(file)
		return file, nil
	}

	return nil, nil
}
