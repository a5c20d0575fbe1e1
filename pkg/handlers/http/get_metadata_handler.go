package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getMetadataHandler struct {
	logger *logrus.Logger
	store  RiskProfileStore
}

func NewGetMetadataHandler(logger *logrus.Logger, store RiskProfileStore) Handler {
	return &getMetadataHandler{
		logger: logger,
		store:  store,
	}
}

func (h *getMetadataHandler) Handle(c *fiber.Ctx) error {
	meta := h.store.GetMetadata(c.Context())
	if meta == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "risk table metadata not available"})
	}
	return c.Status(fiber.StatusOK).JSON(meta)
}
