package riskprofile

// DefaultTable returns the built-in risk table used when the persisted
// table has never been populated. Multipliers are relative to a neutral
// baseline of 1.0.
func DefaultTable() Table {
	return NewTable([]Profile{
		{TLD: "com", RiskMultiplier: 1.0, Category: "generic"},
		{TLD: "net", RiskMultiplier: 1.0, Category: "generic"},
		{TLD: "org", RiskMultiplier: 0.9, Category: "generic"},
		{TLD: "edu", RiskMultiplier: 0.7, Category: "sponsored"},
		{TLD: "gov", RiskMultiplier: 0.6, Category: "sponsored"},
		{TLD: "io", RiskMultiplier: 1.1, Category: "generic"},
		{TLD: "co", RiskMultiplier: 1.1, Category: "country"},
		{TLD: "dev", RiskMultiplier: 1.1, Category: "generic"},
		{TLD: "app", RiskMultiplier: 1.1, Category: "generic"},
		{TLD: "xyz", RiskMultiplier: 2.2, Category: "generic", Notes: "high abuse volume"},
		{TLD: "top", RiskMultiplier: 2.4, Category: "generic", Notes: "high abuse volume"},
		{TLD: "icu", RiskMultiplier: 2.3, Category: "generic"},
		{TLD: "tk", RiskMultiplier: 2.8, Category: "country", Notes: "free registration"},
		{TLD: "ml", RiskMultiplier: 2.8, Category: "country", Notes: "free registration"},
		{TLD: "ga", RiskMultiplier: 2.8, Category: "country", Notes: "free registration"},
		{TLD: "cf", RiskMultiplier: 2.8, Category: "country", Notes: "free registration"},
		{TLD: "gq", RiskMultiplier: 2.8, Category: "country", Notes: "free registration"},
		{TLD: "buzz", RiskMultiplier: 2.0, Category: "generic"},
		{TLD: "click", RiskMultiplier: 2.0, Category: "generic"},
		{TLD: "work", RiskMultiplier: 1.8, Category: "generic"},
	})
}
