// Package password hashea y verifica secretos de login con bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxSecretBytes es el límite de entrada de bcrypt.
const MaxSecretBytes = 72

// ErrSecretTooLong indica un secreto que bcrypt truncaría.
var ErrSecretTooLong = errors.New("password: el secreto supera 72 bytes")

// Hasher aplica bcrypt con un costo fijo. Es seguro para uso concurrente.
type Hasher struct {
	cost int
}

// NewHasher construye el hasher; un costo fuera de rango usa bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash genera un hash con sal aleatoria embebida: dos llamadas con el mismo secreto difieren.
func (h *Hasher) Hash(secret string) (string, error) {
	if len(secret) > MaxSecretBytes {
		return "", ErrSecretTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("password: hash: %w", err)
	}
	return string(b), nil
}

// Verify informa si secret produjo hashed. Un hash corrupto devuelve false, nunca entra en pánico.
func (h *Hasher) Verify(secret, hashed string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	if len(secret) > MaxSecretBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(secret)) == nil
}

// IsHash informa si s tiene forma de hash bcrypt (evita persistir texto plano).
func IsHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}
