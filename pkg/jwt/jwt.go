package jwt

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Errores de verificación. Se distinguen internamente para diagnóstico;
// hacia el cliente ambos se presentan como credenciales inválidas.
var (
	ErrInvalidToken = errors.New("jwt: token inválido")
	ErrExpiredToken = errors.New("jwt: token expirado")
	ErrEmptySecret  = errors.New("jwt: secret vacío")
)

// ClaimSet es la foto desnormalizada de la identidad que viaja en el token.
// No se vuelve a leer del almacén en cada petición.
type ClaimSet struct {
	UserID      int64    `json:"user_id"`
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// HasPermission informa si el claim set incluye el permiso (comparación exacta).
func (c ClaimSet) HasPermission(p string) bool {
	for _, have := range c.Permissions {
		if have == p {
			return true
		}
	}
	return false
}

// Claims incluye los claims estándar JWT más el ClaimSet de la aplicación.
type Claims struct {
	jwt.RegisteredClaims
	ClaimSet
}

// Campos admitidos en el payload; cualquier otro invalida el token.
var (
	requiredFields = []string{"exp", "iat", "user_id", "username", "role", "permissions"}
	optionalFields = []string{"iss", "sub"}
)

// Issuer emite y verifica tokens HS256 con un secret de proceso inmutable.
type Issuer struct {
	secret    []byte
	ttl       time.Duration
	issuer    string
	clockSkew time.Duration
	now       func() time.Time
}

// Option configura un Issuer.
type Option func(*Issuer)

// WithIssuer fija el claim iss emitido y exigido al verificar.
func WithIssuer(iss string) Option {
	return func(i *Issuer) { i.issuer = iss }
}

// WithClockSkew tolera un iat adelantado hasta d respecto al reloj local.
func WithClockSkew(d time.Duration) Option {
	return func(i *Issuer) { i.clockSkew = d }
}

// WithClock sustituye el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer construye el emisor. ttl debe ser >= 0; un ttl de 0 produce tokens ya vencidos.
func NewIssuer(secret string, ttl time.Duration, opts ...Option) (*Issuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl < 0 {
		return nil, fmt.Errorf("jwt: ttl negativo %s", ttl)
	}
	i := &Issuer{
		secret:    []byte(secret),
		ttl:       ttl,
		clockSkew: 30 * time.Second,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// TTL devuelve la vigencia configurada.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue firma el claim set con expiración now+ttl.
func (i *Issuer) Issue(cs ClaimSet) (string, error) {
	now := i.now()
	perms := make([]string, len(cs.Permissions))
	copy(perms, cs.Permissions)
	cs.Permissions = perms

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   strconv.FormatInt(cs.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		ClaimSet: cs,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify valida firma, estructura y vigencia y devuelve exactamente el claim set emitido.
// Errores: ErrExpiredToken si venció, ErrInvalidToken en cualquier otro caso.
func (i *Issuer) Verify(tokenString string) (ClaimSet, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithStrictDecoding(),
		jwt.WithExpirationRequired(),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}

	var claims Claims
	token, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ClaimSet{}, fmt.Errorf("%w: %v", ErrExpiredToken, err)
		}
		return ClaimSet{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ClaimSet{}, fmt.Errorf("%w: claims inválidos", ErrInvalidToken)
	}
	if err := checkShape(tokenString); err != nil {
		return ClaimSet{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if iat := claims.IssuedAt; iat != nil && iat.After(i.now().Add(i.clockSkew)) {
		return ClaimSet{}, fmt.Errorf("%w: iat en el futuro", ErrInvalidToken)
	}
	if claims.Subject != "" && claims.Subject != strconv.FormatInt(claims.UserID, 10) {
		return ClaimSet{}, fmt.Errorf("%w: sub no coincide con user_id", ErrInvalidToken)
	}
	return claims.ClaimSet, nil
}

// checkShape exige que el payload tenga exactamente los campos conocidos.
// Se ejecuta solo después de verificar la firma.
func checkShape(tokenString string) error {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return errors.New("estructura inválida")
	}
	raw, err := base64.RawURLEncoding.Strict().DecodeString(parts[1])
	if err != nil {
		return fmt.Errorf("payload: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("payload: %w", err)
	}
	for _, k := range requiredFields {
		v, ok := fields[k]
		if !ok || string(v) == "null" {
			return fmt.Errorf("falta el campo %q", k)
		}
		delete(fields, k)
	}
	for _, k := range optionalFields {
		delete(fields, k)
	}
	for k := range fields {
		return fmt.Errorf("campo no admitido %q", k)
	}
	return nil
}

// Generate emite un token con un Issuer efímero (atajo para scripts y tests).
func Generate(secret string, cs ClaimSet, ttl time.Duration) (string, error) {
	i, err := NewIssuer(secret, ttl)
	if err != nil {
		return "", err
	}
	return i.Issue(cs)
}

// Parse verifica un token con un Issuer efímero sin issuer exigido.
func Parse(secret, tokenString string) (ClaimSet, error) {
	i, err := NewIssuer(secret, 0)
	if err != nil {
		return ClaimSet{}, err
	}
	return i.Verify(tokenString)
}
