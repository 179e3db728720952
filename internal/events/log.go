package events

import (
	"github.com/sirupsen/logrus"
)

// Log writes events to a logrus logger as structured entries.
type Log struct {
	Logger *logrus.Logger
}

// NewLog returns a Log sink backed by a fresh logger at the given level.
func NewLog(level logrus.Level) Log {
	logger := logrus.New()
	logger.SetLevel(level)
	return Log{Logger: logger}
}

func (l Log) Debug(msg string, fields Fields) {
	l.Logger.WithFields(logrus.Fields(fields)).Debug(msg)
}

func (l Log) Info(msg string, fields Fields) {
	l.Logger.WithFields(logrus.Fields(fields)).Info(msg)
}

func (l Log) Warn(msg string, fields Fields) {
	l.Logger.WithFields(logrus.Fields(fields)).Warn(msg)
}

// Fatal logs at fatal level without terminating the process; the Generator
// decides whether a failure aborts the run.
func (l Log) Fatal(msg string, fields Fields) {
	l.Logger.WithFields(logrus.Fields(fields)).Log(logrus.FatalLevel, msg)
}

func (l Log) Metric(m Metric) {
	entry := l.Logger.WithFields(logrus.Fields{
		"metric": m.Name,
		"kind":   m.Kind,
	})
	for k, v := range m.Tags {
		entry = entry.WithField(k, v)
	}
	if m.Text != "" {
		entry = entry.WithField("text", m.Text)
	}
	entry.Info("metric")
}
