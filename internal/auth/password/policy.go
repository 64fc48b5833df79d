// Package password provides secret strength evaluation and one-way hashing
// for user passwords. Raw secrets are ephemeral: they are evaluated, hashed,
// and discarded, never persisted or logged.
package password

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Policy is the configurable strength rule set applied to new secrets.
type Policy struct {
	MinLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireDigit   bool
	RequireSpecial bool
}

// DefaultPolicy returns the stock rule set: length 8 plus all four
// character classes.
func DefaultPolicy() Policy {
	return Policy{
		MinLength:      8,
		RequireUpper:   true,
		RequireLower:   true,
		RequireDigit:   true,
		RequireSpecial: true,
	}
}

// Violation messages for the individual rules, in evaluation order.
const (
	violationUpper   = "must contain at least one uppercase letter"
	violationLower   = "must contain at least one lowercase letter"
	violationDigit   = "must contain at least one digit"
	violationSpecial = "must contain at least one special character"
)

// Evaluate checks secret against every rule and returns all violations in
// rule order. It never fails; an empty slice means the secret is acceptable.
func (p Policy) Evaluate(secret string) []string {
	var violations []string

	// Length counts runes, not bytes; multibyte characters are one each.
	if utf8.RuneCountInString(secret) < p.MinLength {
		violations = append(violations, fmt.Sprintf("must be at least %d characters long", p.MinLength))
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range secret {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if p.RequireUpper && !hasUpper {
		violations = append(violations, violationUpper)
	}
	if p.RequireLower && !hasLower {
		violations = append(violations, violationLower)
	}
	if p.RequireDigit && !hasDigit {
		violations = append(violations, violationDigit)
	}
	if p.RequireSpecial && !hasSpecial {
		violations = append(violations, violationSpecial)
	}

	return violations
}
