package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type invalidateCacheHandler struct {
	logger *logrus.Logger
	store  RiskProfileStore
}

func NewInvalidateCacheHandler(logger *logrus.Logger, store RiskProfileStore) Handler {
	return &invalidateCacheHandler{
		logger: logger,
		store:  store,
	}
}

func (h *invalidateCacheHandler) Handle(c *fiber.Ctx) error {
	h.logger.Info("invalidating risk table cache")
	h.store.ClearCache()
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "cache invalidated successfully",
	})
}
