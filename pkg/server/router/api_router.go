package router

import (
	"github.com/gofiber/fiber/v2"
	handlers "github.com/mailsentry/mailsentry/pkg/handlers/http"
)

type apiRouter struct {
	handlerTransport handlers.HandlerTransport
}

func NewAPIRouter(handlerTransport handlers.HandlerTransport) ServerRouter {
	return &apiRouter{
		handlerTransport: handlerTransport,
	}
}

func (r *apiRouter) BuildRoutes(router *fiber.App) error {
	v1 := router.Group("/api/v1")
	{
		v1.Post("/validate", r.handlerTransport.ValidateEmailHandler.Handle)

		v1.Post("/cache/invalidate", r.handlerTransport.InvalidateCacheHandler.Handle)

		profiles := v1.Group("/risk-profiles")
		{
			profiles.Put("", r.handlerTransport.BulkUpdateProfilesHandler.Handle)
			profiles.Get("", r.handlerTransport.ListProfilesHandler.Handle)
			// registered before :tld so "metadata" never matches the param route
			profiles.Get("/metadata", r.handlerTransport.GetMetadataHandler.Handle)
			profiles.Get("/:tld", r.handlerTransport.GetProfileHandler.Handle)
			profiles.Patch("/:tld", r.handlerTransport.UpdateProfileHandler.Handle)
		}
	}
	return nil
}
