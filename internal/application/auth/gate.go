package auth

import (
	"errors"
	"strings"

	"github.com/jhoicas/gestion-negocio-api/internal/domain"
	"github.com/jhoicas/gestion-negocio-api/pkg/jwt"
)

// Identity es el claim set resuelto a partir del token.
type Identity = jwt.ClaimSet

// TokenVerifier valida un token y devuelve el claim set emitido. Lo implementa *jwt.Issuer.
type TokenVerifier interface {
	Verify(token string) (jwt.ClaimSet, error)
}

// Rejection describe por qué se detiene una petición.
// Err es uno de los sentinelas de domain; Cause conserva el detalle interno (no se expone).
type Rejection struct {
	Err     error
	Message string
	Cause   error
}

// Outcome es el resultado de una etapa: Continue(identidad) o Halt(rechazo).
type Outcome struct {
	identity  *Identity
	rejection *Rejection
}

// Continue construye un resultado que deja pasar la petición con la identidad resuelta.
func Continue(id Identity) Outcome {
	return Outcome{identity: &id}
}

// Halt construye un resultado terminal.
func Halt(r Rejection) Outcome {
	return Outcome{rejection: &r}
}

// Identity devuelve la identidad si el resultado es Continue.
func (o Outcome) Identity() (Identity, bool) {
	if o.identity == nil {
		return Identity{}, false
	}
	return *o.identity, true
}

// Rejection devuelve el rechazo si el resultado es Halt.
func (o Outcome) Rejection() (Rejection, bool) {
	if o.rejection == nil {
		return Rejection{}, false
	}
	return *o.rejection, true
}

// Gate localiza el token de la petición, lo verifica y resuelve la identidad.
type Gate struct {
	verifier TokenVerifier
}

// NewGate construye la puerta de autenticación.
func NewGate(v TokenVerifier) *Gate {
	return &Gate{verifier: v}
}

// Authenticate decide a partir del header Authorization y del parámetro de query token.
// El header mal formado cuenta como ausente; el query solo se usa si el header no aporta token.
func (g *Gate) Authenticate(authorization, queryToken string) Outcome {
	tok := ExtractToken(authorization, queryToken)
	if tok == "" {
		return Halt(Rejection{Err: domain.ErrMissingToken, Message: "Token de acceso requerido"})
	}
	claims, err := g.verifier.Verify(tok)
	if err != nil {
		return Halt(Rejection{Err: domain.ErrInvalidCredentials, Message: "Token inválido o expirado", Cause: err})
	}
	return Continue(claims)
}

// ExtractToken devuelve el token de "Bearer <token>" o, en su defecto, el del query.
func ExtractToken(authorization, queryToken string) string {
	if tok := bearerToken(authorization); tok != "" {
		return tok
	}
	return strings.TrimSpace(queryToken)
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// IsExpired informa si el rechazo se debió a un token vencido (solo diagnóstico).
func (r Rejection) IsExpired() bool {
	return r.Cause != nil && errors.Is(r.Cause, jwt.ErrExpiredToken)
}
