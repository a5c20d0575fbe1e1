package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mailsentry/mailsentry/pkg/handlers/http/request"
	"github.com/mailsentry/mailsentry/pkg/infra/fingerprint"
	"github.com/mailsentry/mailsentry/pkg/infra/metrics"
	"github.com/mailsentry/mailsentry/pkg/validation"
	"github.com/sirupsen/logrus"
)

type validateEmailHandler struct {
	logger        *logrus.Logger
	engine        *validation.Engine
	metricsWorker metrics.Worker
}

func NewValidateEmailHandler(
	logger *logrus.Logger,
	engine *validation.Engine,
	metricsWorker metrics.Worker,
) Handler {
	return &validateEmailHandler{
		logger:        logger,
		engine:        engine,
		metricsWorker: metricsWorker,
	}
}

func (h *validateEmailHandler) Handle(c *fiber.Ctx) error {
	var req request.ValidateEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	fp := h.fingerprintFromHeader(c)

	start := time.Now()
	result := h.engine.ValidateEmail(c.Context(), req.Email, fp)
	h.emitEvent(result, fp, time.Since(start))

	return c.Status(fiber.StatusOK).JSON(result)
}

// fingerprintFromHeader decodes the optional fingerprint header. A
// malformed fingerprint is logged and treated as absent, it never
// rejects the validation request.
func (h *validateEmailHandler) fingerprintFromHeader(c *fiber.Ctx) *fingerprint.Fingerprint {
	encoded := c.Get(fingerprint.Header)
	if encoded == "" {
		return nil
	}
	fp, err := fingerprint.NewFromID(encoded)
	if err != nil {
		h.logger.WithError(err).Debug("ignoring malformed fingerprint header")
		return nil
	}
	return fp
}

func (h *validateEmailHandler) emitEvent(
	result validation.Result,
	fp *fingerprint.Fingerprint,
	elapsed time.Duration,
) {
	evt := &metrics.Event{
		Decision:     string(result.Decision),
		RiskScore:    result.RiskScore,
		RiskBucket:   string(result.Bucket),
		EntropyScore: result.Signals.EntropyScore,
		LatencyMs:    elapsed.Milliseconds(),
		Timestamp:    time.Now().Unix(),
	}
	if result.Decision == validation.DecisionBlock {
		evt.BlockReason = result.Message
	}
	if fp != nil {
		evt.BotScore = fp.BotScore
		evt.Country = fp.Country
		evt.ASN = fp.ASN
		evt.FingerprintHash = fp.Hash()
	}
	h.metricsWorker.Emit(evt)
}
