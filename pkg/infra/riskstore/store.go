package riskstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mailsentry/mailsentry/pkg/domain/riskprofile"
	"github.com/mailsentry/mailsentry/pkg/infra/kvstore"
	"github.com/mailsentry/mailsentry/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTableKey = "tld_risk_table"
	DefaultFreshFor = 24 * time.Hour

	metadataCountField       = "count"
	metadataLastUpdatedField = "last_updated"
	metadataVersionField     = "version"
	metadataSourceField      = "source"
)

type Config struct {
	Key      string
	FreshFor time.Duration
	Source   string
}

// UpdateResult reports the outcome of a bulk or single-entry update.
// Write failures never surface as errors across the store boundary.
type UpdateResult struct {
	Success       bool      `json:"success"`
	ProfilesCount int       `json:"profiles_count,omitempty"`
	Timestamp     time.Time `json:"timestamp,omitempty"`
	Error         string    `json:"error,omitempty"`
}

type Option func(*Store)

// WithClock injects the time source. Tests use it to move the
// freshness window deterministically.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store is the read-through, invalidate-on-write cache over the
// persisted TLD risk table. Reads are served from memory while the
// cached projection is inside the freshness window; a backing-store
// read failure serves the previous projection even when stale.
// Concurrent bulk updates are last-write-wins.
type Store struct {
	kv     kvstore.Store
	logger *logrus.Logger
	cfg    Config
	now    func() time.Time
	group  singleflight.Group

	mu       sync.RWMutex
	table    riskprofile.Table
	cached   bool
	loadedAt time.Time
}

func NewStore(kv kvstore.Store, logger *logrus.Logger, cfg Config, opts ...Option) *Store {
	if cfg.Key == "" {
		cfg.Key = DefaultTableKey
	}
	if cfg.FreshFor <= 0 {
		cfg.FreshFor = DefaultFreshFor
	}
	s := &Store{
		kv:     kv,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the current risk table. A fresh cached projection is
// returned without I/O; otherwise the persisted sequence is fetched
// and projected. Fetch failures fall back to the previous projection
// (fail-open) or an empty table when none exists. Concurrent refreshes
// collapse into a single backing-store fetch.
func (s *Store) Load(ctx context.Context) riskprofile.Table {
	s.mu.RLock()
	if s.cached && s.now().Sub(s.loadedAt) < s.cfg.FreshFor {
		table := s.table
		s.mu.RUnlock()
		return table
	}
	s.mu.RUnlock()

	result, _, _ := s.group.Do(s.cfg.Key, func() (interface{}, error) {
		return s.refresh(ctx), nil
	})
	table, ok := result.(riskprofile.Table)
	if !ok {
		return riskprofile.Table{}
	}
	return table
}

func (s *Store) refresh(ctx context.Context) riskprofile.Table {
	// another waiter may have refreshed while this one queued
	s.mu.RLock()
	if s.cached && s.now().Sub(s.loadedAt) < s.cfg.FreshFor {
		table := s.table
		s.mu.RUnlock()
		return table
	}
	s.mu.RUnlock()

	data, err := s.kv.Get(ctx, s.cfg.Key)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			prometheus.RiskTableRefreshTotal.WithLabelValues("success").Inc()
			return s.replace(riskprofile.Table{})
		}
		prometheus.RiskTableRefreshTotal.WithLabelValues("failure").Inc()
		return s.staleFallback(err)
	}

	var profiles []riskprofile.Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		prometheus.RiskTableRefreshTotal.WithLabelValues("failure").Inc()
		return s.staleFallback(fmt.Errorf("corrupt risk table payload: %w", err))
	}

	prometheus.RiskTableRefreshTotal.WithLabelValues("success").Inc()
	return s.replace(riskprofile.NewTable(profiles))
}

func (s *Store) replace(table riskprofile.Table) riskprofile.Table {
	s.mu.Lock()
	s.table = table
	s.cached = true
	s.loadedAt = s.now()
	s.mu.Unlock()
	return table
}

// staleFallback serves the previous projection without touching the
// refresh timestamp, so the next Load retries the backing store.
func (s *Store) staleFallback(cause error) riskprofile.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cached {
		s.logger.WithError(cause).Warn("risk table fetch failed, serving cached table")
		return s.table
	}
	s.logger.WithError(cause).Warn("risk table fetch failed with no cached table, serving empty table")
	return riskprofile.Table{}
}

// BulkUpdate validates and persists the full profile sequence as a
// single write, then invalidates the cache so the next Load observes
// the new data regardless of the freshness window. Validation is
// all-or-nothing: one invalid entry rejects the whole batch.
func (s *Store) BulkUpdate(ctx context.Context, profiles []riskprofile.Profile) UpdateResult {
	for i, p := range profiles {
		if riskprofile.NormalizeTLD(p.TLD) == "" {
			return UpdateResult{
				Success: false,
				Error:   fmt.Sprintf("profile at index %d has an empty tld", i),
			}
		}
		if math.IsNaN(p.RiskMultiplier) || math.IsInf(p.RiskMultiplier, 0) || p.RiskMultiplier < 0 {
			return UpdateResult{
				Success: false,
				Error:   fmt.Sprintf("profile %q has an invalid risk_multiplier", p.TLD),
			}
		}
	}

	normalized := make([]riskprofile.Profile, len(profiles))
	for i, p := range profiles {
		p.TLD = riskprofile.NormalizeTLD(p.TLD)
		normalized[i] = p
	}

	payload, err := json.Marshal(normalized)
	if err != nil {
		return UpdateResult{Success: false, Error: fmt.Sprintf("failed to encode profiles: %v", err)}
	}

	now := s.now()
	metadata := kvstore.Metadata{
		metadataCountField:       strconv.Itoa(len(normalized)),
		metadataLastUpdatedField: now.UTC().Format(time.RFC3339),
		metadataVersionField:     uuid.NewString(),
		metadataSourceField:      s.cfg.Source,
	}

	if err := s.kv.Put(ctx, s.cfg.Key, payload, metadata); err != nil {
		s.logger.WithError(err).Error("failed to persist risk table")
		return UpdateResult{Success: false, Error: err.Error()}
	}

	s.ClearCache()

	s.logger.WithFields(logrus.Fields{
		"profiles": len(normalized),
		"source":   s.cfg.Source,
	}).Info("risk table updated")

	return UpdateResult{
		Success:       true,
		ProfilesCount: len(normalized),
		Timestamp:     now,
	}
}

// GetMetadata reads the metadata attached to the persisted table
// without materializing the profile sequence. Any read failure yields
// nil.
func (s *Store) GetMetadata(ctx context.Context) *riskprofile.TableMetadata {
	_, meta, err := s.kv.GetWithMetadata(ctx, s.cfg.Key)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			s.logger.WithError(err).Warn("failed to read risk table metadata")
		}
		return nil
	}
	if len(meta) == 0 {
		return nil
	}
	count, _ := strconv.Atoi(meta[metadataCountField])
	return &riskprofile.TableMetadata{
		Count:       count,
		LastUpdated: meta[metadataLastUpdatedField],
		Version:     meta[metadataVersionField],
		Source:      meta[metadataSourceField],
	}
}

// GetSingle looks up one profile by TLD, case-insensitively, via Load.
func (s *Store) GetSingle(ctx context.Context, tld string) *riskprofile.Profile {
	table := s.Load(ctx)
	if p, ok := table.Get(tld); ok {
		return &p
	}
	return nil
}

// UpdateSingle merges the overrides into an existing profile and
// re-persists the full sequence through BulkUpdate, so atomicity and
// cache invalidation behave exactly as a bulk write. A TLD absent from
// the table is an explicit failure and writes nothing.
func (s *Store) UpdateSingle(ctx context.Context, tld string, overrides riskprofile.Overrides) UpdateResult {
	table := s.Load(ctx)
	key := riskprofile.NormalizeTLD(tld)
	existing, ok := table.Get(key)
	if !ok {
		return UpdateResult{
			Success: false,
			Error:   fmt.Sprintf("%v: %q", riskprofile.ErrProfileNotFound, tld),
		}
	}

	merged := riskprofile.Merge(existing, overrides)

	profiles := make([]riskprofile.Profile, 0, len(table))
	for _, p := range table {
		if p.TLD == key {
			p = merged
		}
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].TLD < profiles[j].TLD })

	return s.BulkUpdate(ctx, profiles)
}

// ClearCache drops the cached projection so the next Load bypasses
// the freshness window.
func (s *Store) ClearCache() {
	s.mu.Lock()
	s.table = nil
	s.cached = false
	s.loadedAt = time.Time{}
	s.mu.Unlock()
}
