package server

import (
	"fmt"

	handlers "github.com/mailsentry/mailsentry/pkg/handlers/http"
	"github.com/mailsentry/mailsentry/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/mailsentry/mailsentry/pkg/config"
	"github.com/mailsentry/mailsentry/pkg/server/router"
)

type (
	APIServerDI struct {
		Config           *config.Config
		Logger           *logrus.Logger
		HandlerTransport handlers.HandlerTransport
	}
	APIServer struct {
		*BaseServer
		handlerTransport handlers.HandlerTransport
	}
)

func NewAPIServer(di APIServerDI) *APIServer {
	prometheus.Initialize()

	s := &APIServer{
		BaseServer:       NewBaseServer(di.Config, di.Logger),
		handlerTransport: di.HandlerTransport,
	}

	s.BaseServer.setupMetricsEndpoint()
	return s
}

func (s *APIServer) Run() error {
	s.setupHealthCheck()
	s.WithRouters(router.NewAPIRouter(s.handlerTransport))

	addr := fmt.Sprintf(":%d", s.Config.Server.Port)
	s.Logger.WithField("addr", addr).Info("Starting api server")
	return s.Router.Listen(addr)
}

func (s *APIServer) Shutdown() error {
	return s.Router.Shutdown()
}
