package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mailsentry/mailsentry/pkg/handlers/http/request"
	"github.com/mailsentry/mailsentry/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

type updateProfileHandler struct {
	logger *logrus.Logger
	store  RiskProfileStore
}

func NewUpdateProfileHandler(logger *logrus.Logger, store RiskProfileStore) Handler {
	return &updateProfileHandler{
		logger: logger,
		store:  store,
	}
}

func (h *updateProfileHandler) Handle(c *fiber.Ctx) error {
	tld := c.Params("tld")
	if tld == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "tld is required"})
	}

	var req request.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	h.logger.WithField("tld", tld).Info("single risk profile update requested")

	result := h.store.UpdateSingle(c.Context(), tld, req.Overrides())
	if !result.Success {
		prometheus.RiskTableUpdateTotal.WithLabelValues("failure").Inc()
		if strings.Contains(result.Error, "not found") {
			return c.Status(fiber.StatusNotFound).JSON(result)
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(result)
	}

	prometheus.RiskTableUpdateTotal.WithLabelValues("success").Inc()
	return c.Status(fiber.StatusOK).JSON(result)
}
