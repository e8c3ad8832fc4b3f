package loggingx

import (
	"github.com/dogmatiq/dodeca/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Zap returns a logger that forwards messages to a zap logger.
func Zap(target *zap.Logger) logging.Logger {
	return &zapAdaptor{
		target.Sugar(),
	}
}

type zapAdaptor struct {
	target *zap.SugaredLogger
}

func (a *zapAdaptor) Log(f string, v ...interface{}) {
	a.target.Infof(f, v...)
}

func (a *zapAdaptor) LogString(s string) {
	a.target.Info(s)
}

func (a *zapAdaptor) Debug(f string, v ...interface{}) {
	a.target.Debugf(f, v...)
}

func (a *zapAdaptor) DebugString(s string) {
	a.target.Debug(s)
}

func (a *zapAdaptor) IsDebug() bool {
	return a.target.Desugar().Core().Enabled(zapcore.DebugLevel)
}
