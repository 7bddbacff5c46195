package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// ErrMissingJWTSecret se devuelve cuando JWT_SECRET no está definido.
var ErrMissingJWTSecret = errors.New("config: JWT_SECRET es obligatorio")

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
// Se carga una sola vez al arrancar y no se modifica después.
type Config struct {
	App      AppConfig
	DB       DBConfig
	JWT      JWTConfig
	Security SecurityConfig
	HTTP     HTTPConfig
	Seed     SeedConfig
}

// SeedConfig admin inicial opcional; vacío = no se siembra.
type SeedConfig struct {
	AdminLogin  string
	AdminSecret string
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuración del almacén de credenciales.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	Driver      string // postgres | memory
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración del emisor/verificador de tokens.
type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
	Issuer    string
	ClockSkew time.Duration // tolerancia para iat en el futuro
}

// SecurityConfig parámetros de hashing y política de login.
type SecurityConfig struct {
	BcryptCost int
	// EnforceInactive rechaza el login de usuarios con estado "inactive".
	// Desactivado por defecto: los tokens emitidos siguen valiendo hasta expirar.
	EnforceInactive bool
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host        string
	Port        int
	SwaggerFile string
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "gestion-negocio"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			Driver:      strings.ToLower(getString(v, "DB_DRIVER", "postgres")),
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "gestion_negocio"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:    getString(v, "JWT_SECRET", ""),
			ExpiresIn: getDuration(v, "JWT_EXPIRES_IN", 24*time.Hour),
			Issuer:    getString(v, "JWT_ISSUER", "gestion-negocio"),
			ClockSkew: getDuration(v, "JWT_CLOCK_SKEW", 30*time.Second),
		},
		Security: SecurityConfig{
			BcryptCost:      getInt(v, "BCRYPT_COST", bcrypt.DefaultCost),
			EnforceInactive: getBool(v, "AUTH_ENFORCE_INACTIVE", false),
		},
		HTTP: HTTPConfig{
			Host:        getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:        getInt(v, "HTTP_PORT", 8080),
			SwaggerFile: getString(v, "SWAGGER_FILE", "./docs/swagger.json"),
		},
		Seed: SeedConfig{
			AdminLogin:  getString(v, "SEED_ADMIN_LOGIN", "admin"),
			AdminSecret: getString(v, "SEED_ADMIN_SECRET", ""),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, ErrMissingJWTSecret
	}
	if cfg.DB.Driver != "postgres" && cfg.DB.Driver != "memory" {
		return nil, fmt.Errorf("config: DB_DRIVER desconocido %q", cfg.DB.Driver)
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if !v.IsSet(key) {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return def
	}
	return b
}

// getDuration acepta formato Go ("24h", "90m") o un entero en segundos.
func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if !v.IsSet(key) {
		return def
	}
	s := strings.TrimSpace(v.GetString(key))
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
