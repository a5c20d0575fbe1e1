package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mailsentry/mailsentry/pkg/handlers/http/request"
	"github.com/mailsentry/mailsentry/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

type bulkUpdateProfilesHandler struct {
	logger *logrus.Logger
	store  RiskProfileStore
}

func NewBulkUpdateProfilesHandler(logger *logrus.Logger, store RiskProfileStore) Handler {
	return &bulkUpdateProfilesHandler{
		logger: logger,
		store:  store,
	}
}

func (h *bulkUpdateProfilesHandler) Handle(c *fiber.Ctx) error {
	var req request.BulkUpdateProfilesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	h.logger.WithField("profiles", len(req.Profiles)).Info("bulk risk profile update requested")

	result := h.store.BulkUpdate(c.Context(), req.Profiles)
	if !result.Success {
		prometheus.RiskTableUpdateTotal.WithLabelValues("failure").Inc()
		return c.Status(fiber.StatusUnprocessableEntity).JSON(result)
	}

	prometheus.RiskTableUpdateTotal.WithLabelValues("success").Inc()
	return c.Status(fiber.StatusOK).JSON(result)
}
