package dice

import "go.uber.org/zap"

// LoggedSource wraps a Source and logs every draw at debug level so a battle
// can be replayed from the log.
type LoggedSource struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedSource creates a Source that delegates to src and logs each draw to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(src Source, logger *zap.Logger) *LoggedSource {
	return &LoggedSource{src: src, logger: logger}
}

// Intn delegates to the wrapped source and logs the result.
func (l *LoggedSource) Intn(n int) int {
	v := l.src.Intn(n)
	l.logger.Debug("dice draw", zap.String("kind", "intn"), zap.Int("n", n), zap.Int("value", v))
	return v
}

// Float64 delegates to the wrapped source and logs the result.
func (l *LoggedSource) Float64() float64 {
	v := l.src.Float64()
	l.logger.Debug("dice draw", zap.String("kind", "float64"), zap.Float64("value", v))
	return v
}
