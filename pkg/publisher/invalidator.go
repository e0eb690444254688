// pkg/publisher/invalidator.go
package publisher

import "go.uber.org/zap"

// Invalidator signals downstream caches that a portal's live view changed.
// The rendering layer owns the actual cache; this core only emits the
// signal after a successful sync.
type Invalidator interface {
	InvalidatePortal(portalID string)
}

// loggingInvalidator is the default hook: it only records the signal.
type loggingInvalidator struct {
	logger *zap.Logger
}

func (i *loggingInvalidator) InvalidatePortal(portalID string) {
	i.logger.Debug("Portal cache invalidation signaled",
		zap.String("portalID", portalID))
}
