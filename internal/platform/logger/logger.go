package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a JSON logrus logger on stdout. An unknown level falls back
// to info and is reported once.
func New(level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("level", level).Warn("unknown LOG_LEVEL, using info")
		return log
	}
	log.SetLevel(lvl)
	return log
}
