package metrics

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"
)

// Sink is the analytics boundary. Implementations are append-only;
// a failing sink is logged and swallowed, never surfaced to callers.
//
//go:generate mockery --name=Sink --dir=. --output=./mocks --filename=sink_mock.go --case=underscore --with-expecter
type Sink interface {
	Handle(ctx context.Context, evt *Event) error
}

// logSink writes events as structured log lines. It is the default
// sink when no external analytics endpoint is configured.
type logSink struct {
	logger *logrus.Logger
}

func NewLogSink(logger *logrus.Logger) Sink {
	return &logSink{logger: logger}
}

func (s *logSink) Handle(ctx context.Context, evt *Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	s.logger.WithField("event", string(payload)).Info("validation event")
	return nil
}
