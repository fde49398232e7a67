package rcl

import (
	modular "github.com/edwinhayes/logrus-modular"
	"github.com/sirupsen/logrus"
)

// NewLogger returns a new logrus instance with the package defaults.
func NewLogger() *logrus.Logger {
	return logrus.New()
}

// newModuleLogger wraps a logrus instance in a modular root logger. Nodes
// and their parameter stores hold one of these.
func newModuleLogger(base *logrus.Logger) *modular.ModuleLogger {
	if base == nil {
		base = NewLogger()
	}
	logger := modular.ModuleLogger(modular.NewRootLogger(base))
	return &logger
}
