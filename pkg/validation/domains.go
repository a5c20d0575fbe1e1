package validation

import "strings"

// Known burner providers. Addresses on these domains are throwaway by
// construction.
var disposableDomains = map[string]struct{}{
	"temp-mail.org":      {},
	"10minutemail.com":   {},
	"guerrillamail.com":  {},
	"mailinator.com":     {},
	"yopmail.com":        {},
	"throwawaymail.com":  {},
	"tempmail.net":       {},
	"sharklasers.com":    {},
	"dispostable.com":    {},
	"getnada.com":        {},
	"trashmail.com":      {},
	"maildrop.cc":        {},
	"fakeinbox.com":      {},
	"mohmal.com":         {},
	"emailondeck.com":    {},
	"mintemail.com":      {},
	"spamgourmet.com":    {},
	"mytemp.email":       {},
	"tempail.com":        {},
	"burnermail.io":      {},
}

// Large consumer providers. Not risky on their own, but the flag feeds
// downstream analytics.
var freeProviders = map[string]struct{}{
	"gmail.com":      {},
	"googlemail.com": {},
	"yahoo.com":      {},
	"yahoo.co.uk":    {},
	"hotmail.com":    {},
	"outlook.com":    {},
	"live.com":       {},
	"aol.com":        {},
	"icloud.com":     {},
	"me.com":         {},
	"proton.me":      {},
	"protonmail.com": {},
	"gmx.com":        {},
	"gmx.de":         {},
	"mail.ru":        {},
	"yandex.ru":      {},
	"yandex.com":     {},
	"zoho.com":       {},
}

// IsDisposableDomain reports whether the domain is a known burner
// provider.
func IsDisposableDomain(domain string) bool {
	_, ok := disposableDomains[strings.ToLower(domain)]
	return ok
}

// IsFreeProvider reports whether the domain belongs to a large
// consumer mail provider.
func IsFreeProvider(domain string) bool {
	_, ok := freeProviders[strings.ToLower(domain)]
	return ok
}
