package logging

import "go.uber.org/zap"

// Adapter logs key-value pairs through a sugared zap logger.
type Adapter struct {
	s *zap.SugaredLogger
}

// NewAdapter wraps l. A nil logger yields a no-op adapter.
func NewAdapter(l *zap.Logger) *Adapter {
	if l == nil {
		l = zap.NewNop()
	}
	return &Adapter{s: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

// Debug logs a message at debug level.
func (a *Adapter) Debug(msg string, args ...any) { a.s.Debugw(msg, args...) }

// Info logs a message at info level.
func (a *Adapter) Info(msg string, args ...any) { a.s.Infow(msg, args...) }

// Warn logs a message at warn level.
func (a *Adapter) Warn(msg string, args ...any) { a.s.Warnw(msg, args...) }

// Error logs a message at error level.
func (a *Adapter) Error(msg string, args ...any) { a.s.Errorw(msg, args...) }

// With returns an adapter that adds args to every message.
func (a *Adapter) With(args ...any) *Adapter {
	return &Adapter{s: a.s.With(args...)}
}

// Sync flushes buffered entries.
func (a *Adapter) Sync() error {
	return a.s.Sync()
}
