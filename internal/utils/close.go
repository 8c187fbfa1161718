package utils

import (
	"io"

	"github.com/MrSnakeDoc/linktree/internal/logger"
)

// CloseLogged closes c during shutdown. Failures are logged, never returned.
func CloseLogged(c io.Closer, what string, log logger.Logger) {
	if err := c.Close(); err != nil {
		log.Warn("failed to close", logger.String("resource", what), logger.Error(err))
		return
	}
	log.Info("✅ closed cleanly", logger.String("resource", what))
}
