package validation

import (
	"context"

	"github.com/mailsentry/mailsentry/pkg/config"
	"github.com/mailsentry/mailsentry/pkg/domain/riskprofile"
	"github.com/mailsentry/mailsentry/pkg/infra/fingerprint"
	"github.com/sirupsen/logrus"
)

type Decision string

const (
	DecisionAllow Decision = "allow"
	DecisionWarn  Decision = "warn"
	DecisionBlock Decision = "block"
)

type Bucket string

const (
	BucketVeryLow  Bucket = "very_low"
	BucketLow      Bucket = "low"
	BucketMedium   Bucket = "medium"
	BucketHigh     Bucket = "high"
	BucketVeryHigh Bucket = "very_high"
)

// BucketFor maps a composite risk score to its categorical bucket.
// Boundaries are exclusive on the upper side: exactly 0.2 is "low".
func BucketFor(score float64) Bucket {
	switch {
	case score < 0.2:
		return BucketVeryLow
	case score < 0.4:
		return BucketLow
	case score < 0.6:
		return BucketMedium
	case score < 0.8:
		return BucketHigh
	default:
		return BucketVeryHigh
	}
}

type Signals struct {
	FormatValid           bool     `json:"format_valid"`
	EntropyScore          float64  `json:"entropy_score"`
	LocalPartLength       int      `json:"local_part_length"`
	DomainValid           bool     `json:"domain_valid"`
	IsDisposableDomain    bool     `json:"is_disposable_domain,omitempty"`
	IsFreeProvider        bool     `json:"is_free_provider,omitempty"`
	DomainReputationScore *float64 `json:"domain_reputation_score,omitempty"`
}

type Result struct {
	Valid     bool     `json:"valid"`
	RiskScore float64  `json:"risk_score"`
	Signals   Signals  `json:"signals"`
	Decision  Decision `json:"decision"`
	Bucket    Bucket   `json:"bucket"`
	Message   string   `json:"message"`
	Code      string   `json:"code,omitempty"`
}

// validation failure codes surfaced in Result.Code
const (
	CodeInvalidFormat   = "invalid_format"
	CodeLocalTooShort   = "local_part_too_short"
	CodeRandomLocalPart = "random_local_part"
)

// ProfileSource supplies the current risk table. The risk store
// implements it. An empty table falls back to the built-in defaults;
// a populated table is authoritative, so a TLD it omits stays neutral.
type ProfileSource interface {
	Load(ctx context.Context) riskprofile.Table
}

// Engine combines the structural gate, the entropy analyzer, the TLD
// risk table and any supplementary fingerprint signals into one
// composite score and decision.
type Engine struct {
	logger   *logrus.Logger
	profiles ProfileSource
	defaults riskprofile.Table
	cfg      config.ScoringConfig
}

func NewEngine(logger *logrus.Logger, profiles ProfileSource, cfg config.ScoringConfig) *Engine {
	return &Engine{
		logger:   logger,
		profiles: profiles,
		defaults: riskprofile.DefaultTable(),
		cfg:      cfg,
	}
}

// ValidateEmail renders the tri-state decision for one address.
// Failures are always structured results; this method never returns an
// error regardless of input.
func (e *Engine) ValidateEmail(ctx context.Context, email string, fp *fingerprint.Fingerprint) Result {
	local, domain, formatOK := SplitAddress(email)

	signals := Signals{
		FormatValid:     formatOK,
		DomainValid:     formatOK,
		LocalPartLength: len(local),
	}

	// phase 1: deterministic gates, no scoring
	if !formatOK {
		return Result{
			Valid:     false,
			RiskScore: 1,
			Signals:   signals,
			Decision:  DecisionBlock,
			Bucket:    BucketVeryHigh,
			Message:   "invalid email format",
			Code:      CodeInvalidFormat,
		}
	}

	entropyScore := Entropy(local)
	signals.EntropyScore = entropyScore
	signals.IsDisposableDomain = IsDisposableDomain(domain)
	signals.IsFreeProvider = IsFreeProvider(domain)

	if len(local) < e.cfg.MinLocalLength {
		return Result{
			Valid:     false,
			RiskScore: 1,
			Signals:   signals,
			Decision:  DecisionBlock,
			Bucket:    BucketVeryHigh,
			Message:   "local part too short",
			Code:      CodeLocalTooShort,
		}
	}

	if entropyScore > e.cfg.MaxEntropy {
		return Result{
			Valid:     false,
			RiskScore: 1,
			Signals:   signals,
			Decision:  DecisionBlock,
			Bucket:    BucketVeryHigh,
			Message:   "local part appears random",
			Code:      CodeRandomLocalPart,
		}
	}

	// phase 2: weighted scoring
	tldRisk := e.tldRisk(ctx, TLDOf(domain))
	signals.DomainReputationScore = &tldRisk

	score := e.compositeScore(entropyScore, tldRisk, fp, &signals)
	bucket := BucketFor(score)

	decision := DecisionAllow
	message := "email accepted"
	switch {
	case score >= e.cfg.BlockThreshold:
		decision = DecisionBlock
		message = "email rejected due to high risk score"
	case score >= e.cfg.WarnThreshold:
		decision = DecisionWarn
		message = "email flagged for review"
	}

	e.logger.WithFields(logrus.Fields{
		"risk_score": score,
		"bucket":     bucket,
		"decision":   decision,
	}).Debug("email validation scored")

	return Result{
		Valid:     true,
		RiskScore: score,
		Signals:   signals,
		Decision:  decision,
		Bucket:    bucket,
		Message:   message,
	}
}

// tldRisk maps the TLD multiplier onto [0,1]: the neutral multiplier
// scores 0, MaxTLDMultiplier and above score 1. The built-in default
// table is consulted only when the loaded table is empty; a TLD absent
// from a populated table is neutral.
func (e *Engine) tldRisk(ctx context.Context, tld string) float64 {
	table := e.profiles.Load(ctx)
	if len(table) == 0 {
		table = e.defaults
	}
	multiplier := e.cfg.NeutralTLDMultiplier
	if p, ok := table.Get(tld); ok {
		multiplier = p.RiskMultiplier
	}

	span := e.cfg.MaxTLDMultiplier - e.cfg.NeutralTLDMultiplier
	if span <= 0 {
		return 0
	}
	risk := (multiplier - e.cfg.NeutralTLDMultiplier) / span
	return clamp01(risk)
}

// compositeScore is the weighted sum of the three signal terms,
// normalized by the configured weight sum. The fingerprint term is the
// bot score, floored at DisposableScore for burner domains so a clean
// bot score cannot wash out a throwaway address.
func (e *Engine) compositeScore(
	entropyScore, tldRisk float64,
	fp *fingerprint.Fingerprint,
	signals *Signals,
) float64 {
	weights := e.cfg.Weights
	weightSum := weights.Entropy + weights.TLD + weights.Fingerprint
	if weightSum <= 0 {
		return 0
	}

	var fpTerm float64
	if fp != nil {
		fpTerm = clamp01(fp.BotScore)
	}
	if signals.IsDisposableDomain && fpTerm < e.cfg.DisposableScore {
		fpTerm = e.cfg.DisposableScore
	}

	score := (weights.Entropy*entropyScore +
		weights.TLD*tldRisk +
		weights.Fingerprint*fpTerm) / weightSum
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
