package metrics

import (
	"context"
	"sync/atomic"

	"github.com/mailsentry/mailsentry/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

// Worker emits validation events off the request path. Emission is
// fire-and-forget: a full queue drops the event, a failing sink is
// logged and swallowed, and neither ever delays a decision.
type Worker interface {
	StartWorkers(n int)
	Shutdown()
	Emit(evt *Event)
}

type worker struct {
	logger   *logrus.Logger
	sink     Sink
	taskChan chan func()
	ctx      context.Context
	cancel   context.CancelFunc
	closed   atomic.Bool
}

func NewWorker(logger *logrus.Logger, sink Sink, queueSize int) Worker {
	if queueSize <= 0 {
		queueSize = 1000
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &worker{
		logger:   logger,
		sink:     sink,
		taskChan: make(chan func(), queueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (m *worker) StartWorkers(n int) {
	for i := 0; i < n; i++ {
		go func() {
			for {
				select {
				case task := <-m.taskChan:
					task()
				case <-m.ctx.Done():
					return
				}
			}
		}()
	}
}

// Shutdown stops enqueues and signals the workers through the context.
// The channel is deliberately left open: closing it could panic an
// Emit racing the flag, and a drained closed channel would hand the
// workers nil tasks.
func (m *worker) Shutdown() {
	m.closed.Store(true)
	m.logger.Info("shutting down metrics workers")
	m.cancel()
	m.logger.Info("metrics workers stopped")
}

func (m *worker) Emit(evt *Event) {
	m.enqueueTask(func() {
		m.registerToPrometheus(evt)
	})
	m.enqueueTask(func() {
		if err := m.sink.Handle(context.Background(), evt); err != nil {
			m.logger.WithError(err).WithFields(logrus.Fields{
				"decision": evt.Decision,
				"bucket":   evt.RiskBucket,
			}).Error("analytics sink failed to handle event")
		}
	})
}

func (m *worker) registerToPrometheus(evt *Event) {
	prometheus.ValidationTotal.WithLabelValues(evt.Decision, evt.RiskBucket).Inc()
	prometheus.ValidationLatency.WithLabelValues(evt.Decision).Observe(float64(evt.LatencyMs))
}

func (m *worker) enqueueTask(task func()) {
	if m.closed.Load() {
		return
	}
	select {
	case m.taskChan <- task:
	default:
		m.logger.Warn("taskChan is full, dropping metrics task")
	}
}
