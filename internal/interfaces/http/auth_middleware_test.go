package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/gestion-negocio-api/internal/application/auth"
	"github.com/jhoicas/gestion-negocio-api/internal/application/usecase"
	"github.com/jhoicas/gestion-negocio-api/internal/domain/entity"
	"github.com/jhoicas/gestion-negocio-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/gestion-negocio-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/gestion-negocio-api/pkg/jwt"
	"github.com/jhoicas/gestion-negocio-api/pkg/password"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testJWTSecret = "test-secret-key-for-unit-tests"

type testEnv struct {
	app    *fiber.App
	repo   *memory.UserRepo
	issuer *pkgjwt.Issuer
}

// buildTestApp construye la app completa con almacén en memoria y dos usuarios:
//   - admin/1234 con todos los permisos
//   - ventas1/abcd rol ventas, solo permiso Ventas
//
// Registra los módulos "reportes" y "ventas" con un handler dummy que devuelve 200.
func buildTestApp(t *testing.T) *testEnv {
	t.Helper()
	hasher := password.NewHasher(bcrypt.MinCost)
	issuer, err := pkgjwt.NewIssuer(testJWTSecret, time.Hour, pkgjwt.WithIssuer("gestion-negocio-test"))
	require.NoError(t, err)
	repo := memory.NewUserRepository()

	seed := func(login, secret, role string, perms ...string) {
		h, err := hasher.Hash(secret)
		require.NoError(t, err)
		require.NoError(t, repo.Create(context.Background(), &entity.User{
			LoginName: login, Name: login, PasswordHash: h, Role: role, Permissions: perms, Status: entity.StatusActive,
		}))
	}
	seed("admin", "1234", entity.RoleAdmin, entity.AllPermissions...)
	seed("ventas1", "abcd", entity.RoleVentas, entity.PermVentas)

	dummy := func(r fiber.Router) {
		r.Get("/", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"ok": true, "role": apphttp.GetRole(c)})
		})
	}

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:  auth.NewAuthUseCase(repo, hasher, issuer, nil, auth.Options{}),
		UserUC:  usecase.NewUserUseCase(repo, hasher),
		Gate:    auth.NewGate(issuer),
		Modules: map[string]apphttp.ModuleRegistrar{"reportes": dummy, "ventas": dummy},
	})
	return &testEnv{app: app, repo: repo, issuer: issuer}
}

type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, target, authHeader string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (e *testEnv) login(t *testing.T, loginName, secret string) string {
	t.Helper()
	status, env := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"loginName": loginName, "secret": secret})
	require.Equal(t, http.StatusOK, status)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

// ──────────────────────────────────────────────────────────────────────────────
// Login
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_AdminRecibeToken(t *testing.T) {
	env := buildTestApp(t)
	status, body := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"loginName": "admin", "secret": "1234"})

	assert.Equal(t, http.StatusOK, status)
	assert.True(t, body.Success)

	var data struct {
		Token string `json:"token"`
		User  struct {
			LoginName    string   `json:"loginName"`
			Permissions  []string `json:"permissions"`
			PasswordHash string   `json:"passwordHash"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.NotEmpty(t, data.Token)
	assert.Equal(t, "admin", data.User.LoginName)
	assert.Contains(t, data.User.Permissions, "Reportes")
	assert.Empty(t, data.User.PasswordHash)
	assert.NotContains(t, string(body.Data), "$2a$")
}

func TestLogin_MensajeGenericoAnteCualquierFallo(t *testing.T) {
	env := buildTestApp(t)
	for _, in := range []map[string]string{
		{"loginName": "admin", "secret": "mala"},
		{"loginName": "nadie", "secret": "1234"},
	} {
		status, body := env.do(t, http.MethodPost, "/api/auth/login", "", in)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.False(t, body.Success)
		assert.Equal(t, "Credenciales inválidas", body.Message)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

// Login + ruta protegida por RequirePermission("Reportes").
func TestAuthMiddleware_TokenDeLoginAccedeAReportes(t *testing.T) {
	env := buildTestApp(t)

	status, body := env.do(t, http.MethodGet, "/api/reportes", "Bearer "+env.login(t, "admin", "1234"), nil)
	assert.Equal(t, http.StatusOK, status)

	// ventas1 no tiene Reportes: 403.
	status, body = env.do(t, http.MethodGet, "/api/reportes", "Bearer "+env.login(t, "ventas1", "abcd"), nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body.Code)
	assert.Contains(t, body.Message, "Reportes")
}

func TestAuthMiddleware_SinHeader_Retorna401(t *testing.T) {
	env := buildTestApp(t)
	status, body := env.do(t, http.MethodGet, "/api/reportes", "", nil)

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_TOKEN", body.Code)
	assert.False(t, body.Success)
}

// Un header sin "Bearer" cuenta como ausente: 401, no 403.
func TestAuthMiddleware_HeaderMalFormado_Retorna401(t *testing.T) {
	env := buildTestApp(t)
	status, body := env.do(t, http.MethodGet, "/api/reportes", "InvalidFormatNoBearer", nil)

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_TOKEN", body.Code)
}

func TestAuthMiddleware_TokenInvalido_Retorna403(t *testing.T) {
	env := buildTestApp(t)
	status, body := env.do(t, http.MethodGet, "/api/reportes", "Bearer token.invalido.aqui", nil)

	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "INVALID_TOKEN", body.Code)
}

func TestAuthMiddleware_TokenExpirado_Retorna403(t *testing.T) {
	env := buildTestApp(t)
	past := time.Now().Add(-2 * time.Hour)
	old, err := pkgjwt.NewIssuer(testJWTSecret, time.Hour,
		pkgjwt.WithIssuer("gestion-negocio-test"),
		pkgjwt.WithClock(func() time.Time { return past }))
	require.NoError(t, err)
	tok, err := old.Issue(pkgjwt.ClaimSet{UserID: 1, Username: "admin", Role: "admin", Permissions: []string{"Reportes"}})
	require.NoError(t, err)

	status, body := env.do(t, http.MethodGet, "/api/reportes", "Bearer "+tok, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "INVALID_TOKEN", body.Code)
}

func TestAuthMiddleware_TokenPorQuery(t *testing.T) {
	env := buildTestApp(t)
	tok := env.login(t, "admin", "1234")

	status, _ := env.do(t, http.MethodGet, "/api/reportes?token="+tok, "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAuthMiddleware_MeDevuelveClaims(t *testing.T) {
	env := buildTestApp(t)
	status, body := env.do(t, http.MethodGet, "/api/auth/me", "Bearer "+env.login(t, "ventas1", "abcd"), nil)
	require.Equal(t, http.StatusOK, status)

	var claims pkgjwt.ClaimSet
	require.NoError(t, json.Unmarshal(body.Data, &claims))
	assert.Equal(t, "ventas1", claims.Username)
	assert.Equal(t, "ventas", claims.Role)
	assert.Equal(t, []string{"Ventas"}, claims.Permissions)
}

// Los cambios de permisos solo llegan al token en el siguiente login.
func TestAuthMiddleware_ClaimsSonFotoDelLogin(t *testing.T) {
	env := buildTestApp(t)
	tok := env.login(t, "ventas1", "abcd")

	u, err := env.repo.FindByLoginName(context.Background(), "ventas1")
	require.NoError(t, err)
	_, err = env.repo.UpdateProfile(context.Background(), u.ID, entity.ProfileUpdate{Permissions: []string{"Reportes"}})
	require.NoError(t, err)

	status, _ := env.do(t, http.MethodGet, "/api/reportes", "Bearer "+tok, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.do(t, http.MethodGet, "/api/reportes", "Bearer "+env.login(t, "ventas1", "abcd"), nil)
	assert.Equal(t, http.StatusOK, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Authorize fuera de AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthorize_SinIdentidad_Retorna401(t *testing.T) {
	app := fiber.New()
	app.Get("/x", apphttp.RequireAdmin(), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "UNAUTHENTICATED", body.Code)
}

func TestRequireRole_Middleware(t *testing.T) {
	issuer, err := pkgjwt.NewIssuer(testJWTSecret, time.Hour)
	require.NoError(t, err)
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(auth.NewGate(issuer), nil),
		apphttp.RequireRole("admin", "bodega"),
		func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) },
	)

	for role, want := range map[string]int{"admin": 200, "bodega": 200, "ventas": 403, "supervisor": 403} {
		tok, err := issuer.Issue(pkgjwt.ClaimSet{UserID: 1, Username: "u", Role: role, Permissions: []string{}})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, want, resp.StatusCode, role)
	}
}
