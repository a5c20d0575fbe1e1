package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getProfileHandler struct {
	logger *logrus.Logger
	store  RiskProfileStore
}

func NewGetProfileHandler(logger *logrus.Logger, store RiskProfileStore) Handler {
	return &getProfileHandler{
		logger: logger,
		store:  store,
	}
}

func (h *getProfileHandler) Handle(c *fiber.Ctx) error {
	tld := c.Params("tld")
	if tld == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "tld is required"})
	}

	profile := h.store.GetSingle(c.Context(), tld)
	if profile == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "risk profile not found"})
	}

	return c.Status(fiber.StatusOK).JSON(profile)
}
