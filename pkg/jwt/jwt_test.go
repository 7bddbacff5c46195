package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/gestion-negocio-api/pkg/jwt"
)

const testSecret = "test-secret-key-for-unit-tests"

func sampleClaims() pkgjwt.ClaimSet {
	return pkgjwt.ClaimSet{
		UserID:      7,
		Username:    "admin",
		Role:        "admin",
		Permissions: []string{"Inicio", "Reportes", "Ventas"},
	}
}

func newIssuer(t *testing.T, ttl time.Duration, opts ...pkgjwt.Option) *pkgjwt.Issuer {
	t.Helper()
	i, err := pkgjwt.NewIssuer(testSecret, ttl, opts...)
	require.NoError(t, err)
	return i
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	i := newIssuer(t, 24*time.Hour, pkgjwt.WithIssuer("gestion-negocio"))
	want := sampleClaims()

	tok, err := i.Issue(want)
	require.NoError(t, err)

	got, err := i.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestIssueVerify_SinPermisos(t *testing.T) {
	i := newIssuer(t, time.Hour)
	cs := sampleClaims()
	cs.Permissions = nil

	tok, err := i.Issue(cs)
	require.NoError(t, err)

	got, err := i.Verify(tok)
	require.NoError(t, err)
	assert.Empty(t, got.Permissions)
	assert.False(t, got.HasPermission("Ventas"))
}

func TestIssue_DeterministaConRelojFijo(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	i := newIssuer(t, time.Hour, pkgjwt.WithClock(func() time.Time { return fixed }))

	a, err := i.Issue(sampleClaims())
	require.NoError(t, err)
	b, err := i.Issue(sampleClaims())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestVerify_TTLCeroExpira(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, sampleClaims(), 0)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = pkgjwt.Parse(testSecret, tok)
	assert.ErrorIs(t, err, pkgjwt.ErrExpiredToken)
	assert.NotErrorIs(t, err, pkgjwt.ErrInvalidToken)
}

func TestVerify_ExpiradoConRelojControlado(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	i := newIssuer(t, time.Minute, pkgjwt.WithClock(clock))

	tok, err := i.Issue(sampleClaims())
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = i.Verify(tok)
	assert.ErrorIs(t, err, pkgjwt.ErrExpiredToken)
}

func TestVerify_CualquierByteAlteradoFalla(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, sampleClaims(), time.Hour)
	require.NoError(t, err)

	for idx := 0; idx < len(tok); idx++ {
		b := []byte(tok)
		if b[idx] == 'A' {
			b[idx] = 'B'
		} else {
			b[idx] = 'A'
		}
		_, err := pkgjwt.Parse(testSecret, string(b))
		require.ErrorIs(t, err, pkgjwt.ErrInvalidToken, "byte %d alterado debe invalidar el token", idx)
	}
}

func TestVerify_SecretIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, sampleClaims(), time.Hour)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.ErrorIs(t, err, pkgjwt.ErrInvalidToken)
}

func TestVerify_IssuerDistinto(t *testing.T) {
	tok, err := newIssuer(t, time.Hour, pkgjwt.WithIssuer("otro")).Issue(sampleClaims())
	require.NoError(t, err)

	_, err = newIssuer(t, time.Hour, pkgjwt.WithIssuer("gestion-negocio")).Verify(tok)
	assert.ErrorIs(t, err, pkgjwt.ErrInvalidToken)
}

func TestVerify_IatEnElFuturo(t *testing.T) {
	future := time.Now().Add(time.Hour)
	tok, err := newIssuer(t, time.Hour, pkgjwt.WithClock(func() time.Time { return future })).Issue(sampleClaims())
	require.NoError(t, err)

	_, err = newIssuer(t, time.Hour, pkgjwt.WithClockSkew(30*time.Second)).Verify(tok)
	assert.ErrorIs(t, err, pkgjwt.ErrInvalidToken)

	// Dentro de la tolerancia se acepta.
	near := time.Now().Add(10 * time.Second)
	tok, err = newIssuer(t, time.Hour, pkgjwt.WithClock(func() time.Time { return near })).Issue(sampleClaims())
	require.NoError(t, err)
	_, err = newIssuer(t, time.Hour, pkgjwt.WithClockSkew(30*time.Second)).Verify(tok)
	assert.NoError(t, err)
}

func signMap(t *testing.T, m gojwt.MapClaims, method gojwt.SigningMethod, key interface{}) string {
	t.Helper()
	tok, err := gojwt.NewWithClaims(method, m).SignedString(key)
	require.NoError(t, err)
	return tok
}

func validMap() gojwt.MapClaims {
	now := time.Now()
	return gojwt.MapClaims{
		"exp":         now.Add(time.Hour).Unix(),
		"iat":         now.Unix(),
		"sub":         "7",
		"user_id":     7,
		"username":    "admin",
		"role":        "admin",
		"permissions": []string{"Ventas"},
	}
}

func TestVerify_PayloadConFormaExacta(t *testing.T) {
	tok := signMap(t, validMap(), gojwt.SigningMethodHS256, []byte(testSecret))
	got, err := pkgjwt.Parse(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ventas"}, got.Permissions)
}

func TestVerify_CampoExtraRechazado(t *testing.T) {
	m := validMap()
	m["is_superuser"] = true
	tok := signMap(t, m, gojwt.SigningMethodHS256, []byte(testSecret))

	_, err := pkgjwt.Parse(testSecret, tok)
	assert.ErrorIs(t, err, pkgjwt.ErrInvalidToken)
}

func TestVerify_CampoFaltanteRechazado(t *testing.T) {
	for _, field := range []string{"permissions", "role", "username", "user_id", "iat", "exp"} {
		m := validMap()
		delete(m, field)
		tok := signMap(t, m, gojwt.SigningMethodHS256, []byte(testSecret))

		_, err := pkgjwt.Parse(testSecret, tok)
		assert.ErrorIs(t, err, pkgjwt.ErrInvalidToken, "falta %s", field)
	}
}

func TestVerify_PermisosNullRechazado(t *testing.T) {
	m := validMap()
	m["permissions"] = nil
	tok := signMap(t, m, gojwt.SigningMethodHS256, []byte(testSecret))

	_, err := pkgjwt.Parse(testSecret, tok)
	assert.ErrorIs(t, err, pkgjwt.ErrInvalidToken)
}

func TestVerify_TipoIncorrectoRechazado(t *testing.T) {
	m := validMap()
	m["user_id"] = "7"
	tok := signMap(t, m, gojwt.SigningMethodHS256, []byte(testSecret))

	_, err := pkgjwt.Parse(testSecret, tok)
	assert.ErrorIs(t, err, pkgjwt.ErrInvalidToken)
}

func TestVerify_AlgNoneRechazado(t *testing.T) {
	tok := signMap(t, validMap(), gojwt.SigningMethodNone, gojwt.UnsafeAllowNoneSignatureType)

	_, err := pkgjwt.Parse(testSecret, tok)
	assert.ErrorIs(t, err, pkgjwt.ErrInvalidToken)
}

func TestVerify_Malformado(t *testing.T) {
	for _, tok := range []string{"", "abc", "a.b", "a.b.c", "token.invalido.aqui"} {
		_, err := pkgjwt.Parse(testSecret, tok)
		assert.ErrorIs(t, err, pkgjwt.ErrInvalidToken, tok)
	}
}

func TestNewIssuer_Validaciones(t *testing.T) {
	_, err := pkgjwt.NewIssuer("", time.Hour)
	assert.ErrorIs(t, err, pkgjwt.ErrEmptySecret)

	_, err = pkgjwt.NewIssuer(testSecret, -time.Second)
	assert.Error(t, err)
}
