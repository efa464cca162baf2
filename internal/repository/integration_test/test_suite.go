package integration_test

import (
	"context"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/avito-tech/go-transaction-manager/pgxv5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"storefront/internal/pkg/config"
	"storefront/internal/pkg/postgres"
	"storefront/pkg/logger"
	"storefront/pkg/querier"
)

const (
	postgresImage = "postgres:16-alpine"
	dbName        = "storefront"
	dbUser        = "storefront"
	dbPassword    = "storefront"
)

var (
	querierInstance *querier.Querier
	querierOnce     sync.Once

	pool      *pgxpool.Pool
	container *tcpostgres.PostgresContainer
)

// Run поднимает базу на время тестов пакета и накатывает миграции.
// Если задан POSTGRES_HOST, используется внешняя база (Makefile, CI).
func Run(m *testing.M) int {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := databaseConfig(ctx)
	if err != nil {
		log.Printf("failed to start postgres: %v", err)
		return 1
	}
	defer terminate()

	pool, err = postgres.NewConnPool(ctx, logger.Nop{}, cfg)
	if err != nil {
		log.Printf("failed to connect postgres: %v", err)
		return 1
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, logger.Nop{}, pool); err != nil {
		log.Printf("failed to migrate postgres: %v", err)
		return 1
	}

	return m.Run()
}

func databaseConfig(ctx context.Context) (*config.Database, error) {
	if host := os.Getenv("POSTGRES_HOST"); host != "" {
		// godotenv.Load(.env.test) не вызываем так как Makefile подгружает их
		return &config.Database{
			Host:     host,
			Port:     os.Getenv("POSTGRES_PORT"),
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DBName:   os.Getenv("POSTGRES_DB"),
			SSLMode:  os.Getenv("POSTGRES_SSLMODE"),
		}, nil
	}

	var err error
	container, err = tcpostgres.Run(ctx,
		postgresImage,
		tcpostgres.WithDatabase(dbName),
		tcpostgres.WithUsername(dbUser),
		tcpostgres.WithPassword(dbPassword),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, err
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, err
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return nil, err
	}

	return &config.Database{
		Host:     host,
		Port:     port.Port(),
		User:     dbUser,
		Password: dbPassword,
		DBName:   dbName,
		SSLMode:  "disable",
	}, nil
}

func terminate() {
	if container == nil {
		return
	}
	if err := testcontainers.TerminateContainer(container); err != nil {
		log.Printf("failed to terminate postgres container: %v", err)
	}
}

func GetQuerier() *querier.Querier {
	querierOnce.Do(func() {
		if pool == nil {
			panic("integration_test.Run must be called from TestMain")
		}
		querierInstance = querier.New(pool, pgxv5.DefaultCtxGetter)
	})

	return querierInstance
}

// GetPool пул для сборки сервисов поверх тестовой базы (менеджер транзакций).
func GetPool() *pgxpool.Pool {
	if pool == nil {
		panic("integration_test.Run must be called from TestMain")
	}
	return pool
}

func SetupDB(t *testing.T, setupSql string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := GetQuerier().Exec(ctx, setupSql)

	require.NoError(t, err)
}

func TeardownDB(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := GetQuerier().Exec(ctx, `
		TRUNCATE TABLE notification_deliveries, orders, store_order_counters CASCADE;
	`)
	require.NoError(t, err)
}
