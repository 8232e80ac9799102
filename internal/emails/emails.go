// Package emails provides syntactic address checks and a "did you mean"
// domain suggestion for the sign-in forms.
package emails

import (
	"net/mail"
	"strings"

	"github.com/agnivade/levenshtein"
)

// commonDomains are the providers worth suggesting against. Gym members
// overwhelmingly sign up with one of these.
var commonDomains = []string{
	"gmail.com",
	"googlemail.com",
	"outlook.com",
	"hotmail.com",
	"live.com",
	"yahoo.com",
	"icloud.com",
	"me.com",
	"proton.me",
	"protonmail.com",
	"gmx.com",
	"aol.com",
}

const maxSuggestDistance = 2

// Valid reports whether addr parses as a bare RFC 5322 address with a
// dotted domain.
func Valid(addr string) bool {
	a, err := mail.ParseAddress(addr)
	if err != nil || a.Address != addr {
		return false
	}
	domain, ok := domainOf(addr)
	return ok && strings.Contains(domain, ".")
}

// SuggestDomain returns a corrected address when the domain looks like a
// typo of a common provider. An exact provider match suggests nothing.
func SuggestDomain(addr string) (string, bool) {
	domain, ok := domainOf(addr)
	if !ok || domain == "" {
		return "", false
	}
	domain = strings.ToLower(domain)

	best := ""
	bestDist := maxSuggestDistance + 1
	for _, d := range commonDomains {
		dist := levenshtein.ComputeDistance(domain, d)
		if dist == 0 {
			return "", false
		}
		if dist < bestDist {
			best, bestDist = d, dist
		}
	}
	if best == "" {
		return "", false
	}
	local := addr[:strings.LastIndex(addr, "@")]
	return local + "@" + best, true
}

func domainOf(addr string) (string, bool) {
	i := strings.LastIndex(addr, "@")
	if i < 1 || i == len(addr)-1 {
		return "", false
	}
	return addr[i+1:], true
}
