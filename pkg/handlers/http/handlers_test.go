package http_test

import (
	"context"
	"sync"

	"github.com/mailsentry/mailsentry/pkg/domain/riskprofile"
	"github.com/mailsentry/mailsentry/pkg/infra/metrics"
	"github.com/mailsentry/mailsentry/pkg/infra/riskstore"
	"github.com/sirupsen/logrus"
)

// fakeRiskStore implements RiskProfileStore for handler tests.
type fakeRiskStore struct {
	mu sync.Mutex

	table        riskprofile.Table
	meta         *riskprofile.TableMetadata
	bulkResult   riskstore.UpdateResult
	singleResult riskstore.UpdateResult

	bulkCalls   [][]riskprofile.Profile
	singleCalls []string
	cleared     bool
}

func (f *fakeRiskStore) Load(ctx context.Context) riskprofile.Table {
	return f.table
}

func (f *fakeRiskStore) BulkUpdate(ctx context.Context, profiles []riskprofile.Profile) riskstore.UpdateResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulkCalls = append(f.bulkCalls, profiles)
	return f.bulkResult
}

func (f *fakeRiskStore) GetMetadata(ctx context.Context) *riskprofile.TableMetadata {
	return f.meta
}

func (f *fakeRiskStore) GetSingle(ctx context.Context, tld string) *riskprofile.Profile {
	if p, ok := f.table.Get(tld); ok {
		return &p
	}
	return nil
}

func (f *fakeRiskStore) UpdateSingle(ctx context.Context, tld string, overrides riskprofile.Overrides) riskstore.UpdateResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.singleCalls = append(f.singleCalls, tld)
	return f.singleResult
}

func (f *fakeRiskStore) ClearCache() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = true
}

// fakeMetricsWorker records emitted events synchronously.
type fakeMetricsWorker struct {
	mu     sync.Mutex
	events []*metrics.Event
}

func (f *fakeMetricsWorker) StartWorkers(n int) {}
func (f *fakeMetricsWorker) Shutdown()          {}

func (f *fakeMetricsWorker) Emit(evt *metrics.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
}

func (f *fakeMetricsWorker) last() *metrics.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return nil
	}
	return f.events[len(f.events)-1]
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}
