package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/mailsentry/mailsentry/pkg/domain/riskprofile"
	"github.com/mailsentry/mailsentry/pkg/infra/riskstore"
)

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

// RiskProfileStore is the admin-facing surface of the TLD risk store.
// *riskstore.Store satisfies it; tests substitute fakes.
type RiskProfileStore interface {
	Load(ctx context.Context) riskprofile.Table
	BulkUpdate(ctx context.Context, profiles []riskprofile.Profile) riskstore.UpdateResult
	GetMetadata(ctx context.Context) *riskprofile.TableMetadata
	GetSingle(ctx context.Context, tld string) *riskprofile.Profile
	UpdateSingle(ctx context.Context, tld string, overrides riskprofile.Overrides) riskstore.UpdateResult
	ClearCache()
}

type HandlerTransport struct {
	// Validation
	ValidateEmailHandler Handler

	// Risk profile administration
	BulkUpdateProfilesHandler Handler
	UpdateProfileHandler      Handler
	GetProfileHandler         Handler
	ListProfilesHandler       Handler
	GetMetadataHandler        Handler
	InvalidateCacheHandler    Handler
}
