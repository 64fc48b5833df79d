package auth

import "strings"

// AuthnKind classifies authentication failures.
type AuthnKind string

const (
	AuthnMissingCredential AuthnKind = "missing_credential"
	AuthnExpired           AuthnKind = "expired"
	AuthnMalformed         AuthnKind = "malformed"
	AuthnWrongTokenType    AuthnKind = "wrong_token_type"
	AuthnOther             AuthnKind = "other"
)

// AuthnError is a failed attempt to establish caller identity.
// It is an operational error: expected, classified, and safe to render.
type AuthnError struct {
	Kind    AuthnKind
	Message string
}

func (e *AuthnError) Error() string { return "authn: " + e.Message }

// AuthzKind classifies authorization failures.
type AuthzKind string

const (
	AuthzUnauthenticated  AuthzKind = "unauthenticated"
	AuthzRoleDenied       AuthzKind = "role_denied"
	AuthzOwnershipDenied  AuthzKind = "ownership_denied"
	AuthzResourceNotFound AuthzKind = "resource_not_found"
)

// AuthzError is a denied access decision for an authenticated (or absent) caller.
type AuthzError struct {
	Kind    AuthzKind
	Message string
}

func (e *AuthzError) Error() string { return "authz: " + e.Message }

// SecretKind classifies password-secret failures.
type SecretKind string

const (
	SecretHashingFailure      SecretKind = "hashing_failure"
	SecretVerificationFailure SecretKind = "verification_failure"
	SecretPolicyViolation     SecretKind = "policy_violation"
)

// SecretError is a failure in password handling. For policy violations,
// Violations carries every broken rule so a caller can fix all of them
// in one round trip.
type SecretError struct {
	Kind       SecretKind
	Message    string
	Violations []string
}

func (e *SecretError) Error() string {
	if e.Kind == SecretPolicyViolation && len(e.Violations) > 0 {
		return "secret: " + strings.Join(e.Violations, "; ")
	}
	return "secret: " + e.Message
}
