package metrics

// Event is the per-validation record shipped to the analytics sink.
type Event struct {
	Decision        string  `json:"decision"`
	RiskScore       float64 `json:"risk_score"`
	RiskBucket      string  `json:"risk_bucket"`
	EntropyScore    float64 `json:"entropy_score"`
	BotScore        float64 `json:"bot_score"`
	Country         string  `json:"country,omitempty"`
	ASN             string  `json:"asn,omitempty"`
	BlockReason     string  `json:"block_reason,omitempty"`
	FingerprintHash string  `json:"fingerprint_hash,omitempty"`
	LatencyMs       int64   `json:"latency_ms"`
	Timestamp       int64   `json:"timestamp"`
}
