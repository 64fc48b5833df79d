package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskhq/task-manager-api/internal/auth"
)

const defaultCost = 12

// Hasher wraps bcrypt with a fixed work factor. The cost is process-wide
// configuration: set once at construction, never mutated.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher. Costs outside bcrypt's supported range fall
// back to the default of 12.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = defaultCost
	}
	return &Hasher{cost: cost}
}

// Hash applies the salted one-way transform. It fails only when the
// underlying primitive fails, never on input shape.
func (h *Hasher) Hash(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", &auth.SecretError{Kind: auth.SecretHashingFailure, Message: "hash password: " + err.Error()}
	}
	return string(hashed), nil
}

// Verify reports whether secret matches hash. A mismatch is a plain false,
// not an error; only primitive failures (e.g. a corrupt hash) error out.
func (h *Hasher) Verify(secret, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, &auth.SecretError{Kind: auth.SecretVerificationFailure, Message: "verify password: " + err.Error()}
	}
}
