package track

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the track package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the track package's logger.
// This must be called before any handles are created.
func SetLogger(l *zap.Logger) {
	logger = l
}

// LeakReporter logs a diagnostic for every handle that is collected without
// an explicit release. Subscribe it to a registry:
//
//	reg.Subscribe(track.NewLeakReporter())
type LeakReporter struct{}

// NewLeakReporter creates a reporter backed by the package logger.
func NewLeakReporter() *LeakReporter {
	return &LeakReporter{}
}

// OnHandleEvent implements Observer.
func (lr *LeakReporter) OnHandleEvent(e Event) {
	if e.Type != EventLeaked {
		return
	}
	Logger().Warn("asset handle abandoned without release",
		zap.String("key", e.Entry.Key),
		zap.String("kind", e.Entry.Kind.String()),
		zap.String("id", e.Entry.ID),
		zap.Time("created_at", e.Entry.CreatedAt))
}

func init() {
	defaultRegistry.Subscribe(NewLeakReporter())
}
