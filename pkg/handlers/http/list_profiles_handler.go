package http

import (
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/mailsentry/mailsentry/pkg/domain/riskprofile"
	"github.com/sirupsen/logrus"
)

type listProfilesHandler struct {
	logger *logrus.Logger
	store  RiskProfileStore
}

func NewListProfilesHandler(logger *logrus.Logger, store RiskProfileStore) Handler {
	return &listProfilesHandler{
		logger: logger,
		store:  store,
	}
}

func (h *listProfilesHandler) Handle(c *fiber.Ctx) error {
	table := h.store.Load(c.Context())

	profiles := make([]riskprofile.Profile, 0, len(table))
	for _, p := range table {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].TLD < profiles[j].TLD })

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count":    len(profiles),
		"profiles": profiles,
	})
}
