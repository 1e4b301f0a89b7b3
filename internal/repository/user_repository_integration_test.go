package repository_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ecotrack/auth-service/internal/config"
	"github.com/ecotrack/auth-service/internal/database"
	"github.com/ecotrack/auth-service/internal/models"
	"github.com/ecotrack/auth-service/internal/repository"
	"github.com/ecotrack/auth-service/internal/utils"
	"github.com/ecotrack/auth-service/migrations"
)

// Run locally with:
//   GO_TEST_INTEGRATION=1 go test ./internal/repository -run Integration -v -count=1

// startPostgres starts a throwaway PostgreSQL, applies migrations and returns a repository.
func startPostgres(t *testing.T, driver string) repository.UserRepository {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "db"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	var pool *database.Pool
	// The port can accept connections before postgres finishes initialising
	require.Eventually(t, func() bool {
		pool, err = database.Connect(ctx, &config.DatabaseSettings{
			Driver:   driver,
			URL:      fmt.Sprintf("postgres://user:pass@%s:%s/db?sslmode=disable", host, port.Port()),
			MaxConns: 10,
			MinConns: 2,
		})
		return err == nil
	}, 30*time.Second, 500*time.Millisecond)
	t.Cleanup(pool.Close)

	require.NoError(t, migrations.NewMigrator(pool).RunMigrations(ctx))

	return repository.NewUserRepository(pool)
}

func TestUserRepositoryIntegration(t *testing.T) {
	for _, driver := range []string{"postgres", "pgx"} {
		t.Run(driver, func(t *testing.T) {
			repo := startPostgres(t, driver)
			ctx := context.Background()

			user := &models.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "h1"}
			require.NoError(t, repo.Create(ctx, user))
			assert.NotZero(t, user.ID)

			dup := &models.User{Name: "Ada 2", Email: "ada@example.com", PasswordHash: "h2"}
			err := repo.Create(ctx, dup)
			assert.True(t, utils.IsDuplicateError(err), "got %v", err)

			found, err := repo.GetByEmail(ctx, "ADA@example.com")
			require.NoError(t, err)
			assert.Equal(t, user.ID, found.ID)
			assert.Equal(t, "user", found.Role)

			// Reset token lifecycle
			now := time.Now()
			require.NoError(t, repo.SetResetToken(ctx, user.ID, "digest", now.Add(10*time.Minute)))

			consumed, err := repo.ConsumeResetToken(ctx, "digest", "h3", now)
			require.NoError(t, err)
			assert.Equal(t, "h3", consumed.PasswordHash)
			assert.Nil(t, consumed.ResetTokenHash)

			_, err = repo.ConsumeResetToken(ctx, "digest", "h4", now)
			assert.ErrorIs(t, err, utils.ErrInvalidResetToken, "a token is single use")

			// Expired tokens are rejected and swept
			require.NoError(t, repo.SetResetToken(ctx, user.ID, "old", now.Add(-time.Minute)))
			_, err = repo.ConsumeResetToken(ctx, "old", "h5", now)
			assert.ErrorIs(t, err, utils.ErrInvalidResetToken)

			cleared, err := repo.ClearExpiredResetTokens(ctx, now)
			require.NoError(t, err)
			assert.Equal(t, int64(1), cleared)

			users, total, err := repo.List(ctx, 10, 0)
			require.NoError(t, err)
			assert.Equal(t, int64(1), total)
			assert.Len(t, users, 1)

			require.NoError(t, repo.Delete(ctx, user.ID))
			_, err = repo.GetByID(ctx, user.ID)
			assert.True(t, utils.IsNotFoundError(err))
		})
	}
}

func TestUserRepositoryIntegration_ConcurrentResetConsumption(t *testing.T) {
	repo := startPostgres(t, "pgx")
	ctx := context.Background()

	user := &models.User{Name: "Ada", Email: "race@example.com", PasswordHash: "h1"}
	require.NoError(t, repo.Create(ctx, user))
	require.NoError(t, repo.SetResetToken(ctx, user.ID, "race", time.Now().Add(time.Minute)))

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.ConsumeResetToken(ctx, "race", fmt.Sprintf("h-%d", i), time.Now())
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, utils.ErrInvalidResetToken)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one consumer may win")
}
