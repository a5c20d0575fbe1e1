package riskprofile

import (
	"fmt"
	"strings"
)

var ErrProfileNotFound = fmt.Errorf("risk profile not found for tld")

// Profile carries the per-TLD multiplier applied to baseline risk.
// The TLD is the unique key and is always stored lowercase.
type Profile struct {
	TLD            string  `json:"tld"`
	RiskMultiplier float64 `json:"risk_multiplier"`
	Category       string  `json:"category,omitempty"`
	Notes          string  `json:"notes,omitempty"`
}

// TableMetadata is written alongside the persisted profile sequence on
// every successful bulk update and can be read without materializing
// the sequence itself.
type TableMetadata struct {
	Count       int    `json:"count"`
	LastUpdated string `json:"last_updated"`
	Version     string `json:"version"`
	Source      string `json:"source"`
}

// Table maps a lowercase TLD to its profile. It holds at most one
// profile per normalized TLD.
type Table map[string]Profile

// NewTable projects a profile sequence into a table. Keys are
// lowercased and trimmed; a duplicate TLD keeps the last occurrence.
func NewTable(profiles []Profile) Table {
	t := make(Table, len(profiles))
	for _, p := range profiles {
		key := NormalizeTLD(p.TLD)
		if key == "" {
			continue
		}
		p.TLD = key
		t[key] = p
	}
	return t
}

// Get looks up a profile by TLD, case-insensitively.
func (t Table) Get(tld string) (Profile, bool) {
	p, ok := t[NormalizeTLD(tld)]
	return p, ok
}

func NormalizeTLD(tld string) string {
	return strings.ToLower(strings.TrimSpace(tld))
}

// Overrides is the set of profile fields a single-entry update may
// change. Nil fields keep the base value. The TLD key itself is never
// overridable.
type Overrides struct {
	RiskMultiplier *float64 `json:"risk_multiplier,omitempty"`
	Category       *string  `json:"category,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
}

// Merge returns a new profile with the overrides applied on top of
// base. The identity field is forced to the base profile's TLD.
func Merge(base Profile, overrides Overrides) Profile {
	merged := base
	if overrides.RiskMultiplier != nil {
		merged.RiskMultiplier = *overrides.RiskMultiplier
	}
	if overrides.Category != nil {
		merged.Category = *overrides.Category
	}
	if overrides.Notes != nil {
		merged.Notes = *overrides.Notes
	}
	merged.TLD = base.TLD
	return merged
}
