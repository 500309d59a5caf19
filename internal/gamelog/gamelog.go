// Package gamelog is the shared logrus setup for every component of the
// gobang server, so log lines carry a consistent "component" field the
// way the teacher's internal/game package tags messages by manager.
package gamelog

import (
	"os"

	"github.com/sirupsen/logrus"
)

var base = newBase()

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetLevel adjusts the verbosity of every logger returned by New.
func SetLevel(level logrus.Level) {
	base.SetLevel(level)
}

// New returns a logger scoped to component, e.g. gamelog.New("matchqueue").
func New(component string) *logrus.Entry {
	return base.WithField("component", component)
}
