// Comando seed: aplica migraciones (zonas y roles base) y deja listo el usuario ADMIN.
//
// Uso: go run ./cmd/seed
// Requiere ADMIN_PASSWORD; ADMIN_USERNAME por defecto es "admin".
package main

import (
	"context"
	"time"

	"github.com/jhoicas/citrus-stock/internal/application/usecase"
	"github.com/jhoicas/citrus-stock/internal/infrastructure/postgres"
	"github.com/jhoicas/citrus-stock/pkg/config"
	"github.com/jhoicas/citrus-stock/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	if cfg.DB.Driver != config.StoragePostgres {
		log.Fatal().Str("driver", cfg.DB.Driver).Msg("seed solo aplica a postgres")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := postgres.Migrate(ctx, cfg.DB.ConnectionString()); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	log.Info().Msg("migraciones aplicadas")

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	users := usecase.NewUserUseCase(postgres.NewUserRepository(pool), postgres.NewRoleRepository(pool))
	created, err := users.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		log.Fatal().Err(err).Msg("usuario admin")
	}
	log.Info().Str("username", cfg.Admin.Username).Bool("created", created).Msg("usuario admin listo")
}
