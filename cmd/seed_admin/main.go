// seed_admin crea el usuario administrador inicial (rol admin, todos los permisos)
// en la tabla usuarios de PostgreSQL. Idempotente: si el login ya existe no hace nada.
//
// Uso: go run ./cmd/seed_admin [loginName] [secret]
// Sin argumentos usa SEED_ADMIN_LOGIN / SEED_ADMIN_SECRET.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/gestion-negocio-api/internal/application/usecase"
	"github.com/jhoicas/gestion-negocio-api/internal/infrastructure/postgres"
	"github.com/jhoicas/gestion-negocio-api/pkg/config"
	"github.com/jhoicas/gestion-negocio-api/pkg/password"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}

	loginName, secret := cfg.Seed.AdminLogin, cfg.Seed.AdminSecret
	if len(os.Args) > 1 {
		loginName = os.Args[1]
	}
	if len(os.Args) > 2 {
		secret = os.Args[2]
	}
	if secret == "" {
		fmt.Fprintln(os.Stderr, "Uso: seed_admin [loginName] [secret] (o SEED_ADMIN_SECRET)")
		os.Exit(2)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "Esquema de usuarios: %v\n", err)
		os.Exit(1)
	}

	users := usecase.NewUserUseCase(postgres.NewUserRepository(pool), password.NewHasher(cfg.Security.BcryptCost))
	created, err := users.SeedAdmin(ctx, loginName, secret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear admin: %v\n", err)
		os.Exit(1)
	}
	if !created {
		fmt.Printf("El usuario %q ya existe, no se modificó\n", loginName)
		return
	}
	fmt.Printf("Admin %q creado con todos los permisos\n", loginName)
}
