package main

import (
	"context"
	"fmt"

	appwarehouse "github.com/jhoicas/citrus-stock/internal/application/warehouse"
	"github.com/jhoicas/citrus-stock/internal/domain/repository"
	"github.com/jhoicas/citrus-stock/internal/infrastructure/memory"
	"github.com/jhoicas/citrus-stock/internal/infrastructure/postgres"
	"github.com/jhoicas/citrus-stock/pkg/config"
	"github.com/jhoicas/citrus-stock/pkg/logger"
)

// storage agrupa los repositorios del driver elegido.
type storage struct {
	tx          appwarehouse.TxRunner
	users       repository.UserRepository
	roles       repository.RoleRepository
	permissions repository.PermissionRepository
	tokens      repository.RefreshTokenRepository
	products    repository.ProductRepository
	suppliers   repository.SupplierRepository
	batches     repository.ProductBatchRepository
	boxes       repository.BoxRepository
	zones       repository.ZoneRepository
	scans       repository.ScanEventRepository
	close       func()
}

func openStorage(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*storage, error) {
	switch cfg.Driver {
	case config.StorageMemory:
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		s.Seed(ctx)
		return &storage{
			tx:          s,
			users:       memory.NewUserRepository(s),
			roles:       memory.NewRoleRepository(s),
			permissions: memory.NewPermissionRepository(s),
			tokens:      memory.NewRefreshTokenRepository(s),
			products:    memory.NewProductRepository(s),
			suppliers:   memory.NewSupplierRepository(s),
			batches:     memory.NewProductBatchRepository(s),
			boxes:       memory.NewBoxRepository(s),
			zones:       memory.NewZoneRepository(s),
			scans:       memory.NewScanEventRepository(s),
			close:       func() {},
		}, nil
	case config.StoragePostgres:
		if cfg.AutoMigrate {
			if err := postgres.Migrate(ctx, cfg.ConnectionString()); err != nil {
				return nil, fmt.Errorf("migraciones: %w", err)
			}
			log.Info().Msg("migraciones aplicadas")
		}
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &storage{
			tx:          postgres.NewTxRunner(pool),
			users:       postgres.NewUserRepository(pool),
			roles:       postgres.NewRoleRepository(pool),
			permissions: postgres.NewPermissionRepository(pool),
			tokens:      postgres.NewRefreshTokenRepository(pool),
			products:    postgres.NewProductRepository(pool),
			suppliers:   postgres.NewSupplierRepository(pool),
			batches:     postgres.NewProductBatchRepository(pool),
			boxes:       postgres.NewBoxRepository(pool),
			zones:       postgres.NewZoneRepository(pool),
			scans:       postgres.NewScanEventRepository(pool),
			close:       pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("driver de almacenamiento desconocido: %s", cfg.Driver)
	}
}
