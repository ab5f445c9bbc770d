package logging

import (
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	once   sync.Once
	logger *logrus.Logger
)

// GetLogger returns the shared logger instance.
func GetLogger() *logrus.Logger {
	once.Do(func() {
		logger = logrus.New()
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			DisableColors: false,
			FullTimestamp: true,
			PadLevelText:  true,
		})
	})
	return logger
}

// SetLevel parses a textual level and applies it to the shared logger.
func SetLevel(level string) error {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("logging: parse level %q: %w", level, err)
	}
	GetLogger().SetLevel(parsed)
	return nil
}

// SetOutput redirects the shared logger. The terminal dashboard uses this
// to keep log lines off the screen it is drawing on.
func SetOutput(w io.Writer) {
	GetLogger().SetOutput(w)
}
